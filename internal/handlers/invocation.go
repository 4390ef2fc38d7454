package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Request is the HTTP-style invocation record delivered by the function runtime.
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Body                  string            `json:"body,omitempty"`
	IsBase64Encoded       bool              `json:"isBase64Encoded,omitempty"`
}

// Response is the invocation result handed back to the function runtime.
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, PUT, OPTIONS"
	corsAllowHeaders = "Content-Type"
	corsMaxAge       = "86400"
)

func (r Request) method() string {
	if r.HTTPMethod == "" {
		return http.MethodGet
	}
	return r.HTTPMethod
}

// query returns the named parameter and whether it was supplied at all.
func (r Request) query(name string) (string, bool) {
	value, ok := r.QueryStringParameters[name]
	return value, ok
}

// payload returns the decoded request body. An absent body reads as an empty object.
func (r Request) payload() ([]byte, error) {
	body := r.Body
	if r.IsBase64Encoded && body != "" {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = string(decoded)
	}

	if strings.TrimSpace(body) == "" {
		return []byte("{}"), nil
	}
	return []byte(body), nil
}

func preflightResponse() Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  corsAllowOrigin,
			"Access-Control-Allow-Methods": corsAllowMethods,
			"Access-Control-Allow-Headers": corsAllowHeaders,
			"Access-Control-Max-Age":       corsMaxAge,
		},
		Body: "",
	}
}

func jsonResponse(statusCode int, data interface{}) (Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode response: %w", err)
	}

	return Response{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": corsAllowOrigin,
		},
		Body: string(body),
	}, nil
}

func errorResponse(statusCode int, message string) Response {
	// A map of strings always encodes.
	resp, _ := jsonResponse(statusCode, map[string]string{
		"error": message,
	})
	return resp
}

func messageResponse(statusCode int, message string) (Response, error) {
	return jsonResponse(statusCode, map[string]string{
		"message": message,
	})
}

// Invoke decodes one invocation event, handles it and encodes the response record.
func (h *PlayerHandler) Invoke(ctx context.Context, event []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(event, &req); err != nil {
		return json.Marshal(errorResponse(http.StatusInternalServerError, err.Error()))
	}
	return json.Marshal(h.Handle(ctx, req))
}
