package handlers

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies read by the HTTP adapter.
const maxBodyBytes = 1 << 20

// Routes serves the handler for every method on the router root.
func (h *PlayerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.HandleFunc("/", h.ServeHTTP)

	return r
}

// ServeHTTP adapts a net/http request to the invocation contract.
func (h *PlayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeResponse(w, errorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	query := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	writeResponse(w, h.Handle(r.Context(), Request{
		HTTPMethod:            r.Method,
		QueryStringParameters: query,
		Body:                  string(body),
	}))
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)

	if resp.Body == "" {
		return
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			slog.Error("Failed to decode response body", "error", err)
			return
		}
		body = decoded
	}

	if _, err := w.Write(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
