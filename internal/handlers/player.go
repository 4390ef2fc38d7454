package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anhbaysgalan1/clicker/internal/database"
	"github.com/anhbaysgalan1/clicker/internal/models"
	"github.com/anhbaysgalan1/clicker/internal/services"
	"github.com/anhbaysgalan1/clicker/internal/validation"
)

const (
	actionLeaderboard = "leaderboard"
	actionPlayer      = "player"
)

// PlayerStore is the persistence the handler needs.
type PlayerStore interface {
	Leaderboard(ctx context.Context, limit int) ([]models.Player, error)
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)
	CreatePlayer(ctx context.Context, playerID, nickname string) (*models.Player, bool, error)
	UpdatePlayer(ctx context.Context, playerID string, patch models.PlayerPatch) (*models.Player, error)
}

// PlayerHandler serves player progress and the leaderboard. It keeps no state
// of its own between requests.
type PlayerHandler struct {
	store PlayerStore
}

func NewPlayerHandler(store PlayerStore) *PlayerHandler {
	return &PlayerHandler{
		store: store,
	}
}

type playerIDRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

// Handle dispatches a request on its method and action. Every failure that is
// not a validation, lookup or method error becomes a 500.
func (h *PlayerHandler) Handle(ctx context.Context, req Request) (resp Response) {
	method := req.method()
	if method == http.MethodOptions {
		return preflightResponse()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic while handling request", "method", method, "panic", r)
			resp = errorResponse(http.StatusInternalServerError, fmt.Sprint(r))
		}
	}()

	result, err := h.dispatch(ctx, method, req)
	if err != nil {
		if database.IsUndefinedTableError(err) {
			slog.Warn("Players schema is missing, run `clicker migrate`")
		}
		slog.Error("Request failed", "method", method, "error", err)
		return errorResponse(http.StatusInternalServerError, err.Error())
	}
	return result
}

func (h *PlayerHandler) dispatch(ctx context.Context, method string, req Request) (Response, error) {
	switch method {
	case http.MethodGet:
		action, ok := req.query("action")
		if !ok {
			action = actionLeaderboard
		}

		switch action {
		case actionLeaderboard:
			return h.getLeaderboard(ctx)
		case actionPlayer:
			playerID, _ := req.query("playerId")
			return h.getPlayer(ctx, playerID)
		}

	case http.MethodPost:
		body, err := req.payload()
		if err != nil {
			return Response{}, err
		}
		return h.createPlayer(ctx, body)

	case http.MethodPut:
		body, err := req.payload()
		if err != nil {
			return Response{}, err
		}
		return h.updatePlayer(ctx, body)
	}

	return errorResponse(http.StatusMethodNotAllowed, "Method not allowed"), nil
}

func (h *PlayerHandler) getLeaderboard(ctx context.Context) (Response, error) {
	players, err := h.store.Leaderboard(ctx, services.LeaderboardSize)
	if err != nil {
		return Response{}, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(players))
	for i := range players {
		entries = append(entries, players[i].LeaderboardEntry())
	}

	return jsonResponse(http.StatusOK, models.LeaderboardResponse{Leaderboard: entries})
}

func (h *PlayerHandler) getPlayer(ctx context.Context, playerID string) (Response, error) {
	if err := validation.Validate(&playerIDRequest{PlayerID: playerID}); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	player, err := h.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			return errorResponse(http.StatusNotFound, "Player not found"), nil
		}
		return Response{}, err
	}

	return jsonResponse(http.StatusOK, player.View())
}

func (h *PlayerHandler) createPlayer(ctx context.Context, body []byte) (Response, error) {
	payload, err := parseRawPayload(body)
	if err != nil {
		return Response{}, err
	}

	playerID, err := payload.playerID()
	if err != nil {
		return Response{}, err
	}

	if err := validation.Validate(&playerIDRequest{PlayerID: playerID}); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	nickname, err := payload.nickname()
	if err != nil {
		return Response{}, err
	}

	player, created, err := h.store.CreatePlayer(ctx, playerID, nickname)
	if err != nil {
		return Response{}, err
	}

	if !created {
		return messageResponse(http.StatusOK, "Player already exists")
	}
	return jsonResponse(http.StatusCreated, player.LeaderboardEntry())
}

func (h *PlayerHandler) updatePlayer(ctx context.Context, body []byte) (Response, error) {
	payload, err := parseRawPayload(body)
	if err != nil {
		return Response{}, err
	}

	playerID, err := payload.playerID()
	if err != nil {
		return Response{}, err
	}

	if err := validation.Validate(&playerIDRequest{PlayerID: playerID}); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	patch, err := payload.patch()
	if err != nil {
		return Response{}, err
	}
	if patch.IsEmpty() {
		slog.Debug("Update carries no fields, refreshing updated_at only", "player_id", playerID)
	}

	player, err := h.store.UpdatePlayer(ctx, playerID, patch)
	if err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			return errorResponse(http.StatusNotFound, "Player not found"), nil
		}
		return Response{}, err
	}

	return jsonResponse(http.StatusOK, player.View())
}
