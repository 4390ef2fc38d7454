package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anhbaysgalan1/clicker/internal/config"
	"github.com/anhbaysgalan1/clicker/internal/database"
	"github.com/anhbaysgalan1/clicker/internal/handlers"
	custommiddleware "github.com/anhbaysgalan1/clicker/internal/middleware"
	"github.com/anhbaysgalan1/clicker/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ClickerServer struct {
	config        *config.Config
	db            *database.DB
	playerHandler *handlers.PlayerHandler
	rateLimiter   *custommiddleware.RateLimiter
	server        *http.Server
}

func NewClickerServer(cfg *config.Config) (*ClickerServer, error) {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	playerService := services.NewPlayerService(db)

	return &ClickerServer{
		config:        cfg,
		db:            db,
		playerHandler: handlers.NewPlayerHandler(playerService),
		rateLimiter:   custommiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, nil
}

// PlayerHandler exposes the handler for runtimes that invoke it directly.
func (s *ClickerServer) PlayerHandler() *handlers.PlayerHandler {
	return s.playerHandler
}

func (s *ClickerServer) Start() error {
	s.server = &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           NewRouter(s.playerHandler, s.rateLimiter, s.db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting clicker server", "port", s.config.Port, "environment", s.config.Environment)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	return s.Shutdown()
}

func (s *ClickerServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}

	s.Close()

	slog.Info("Server shutdown complete")
	return nil
}

// Close releases the connection pool and the rate limiter.
func (s *ClickerServer) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}
	s.rateLimiter.Close()
}

// NewRouter mounts the player handler behind the shared middleware stack.
func NewRouter(playerHandler *handlers.PlayerHandler, rateLimiter *custommiddleware.RateLimiter, db Pinger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheck(db))

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.RateLimit)

		r.Mount("/player", playerHandler.Routes())
		r.Mount("/", playerHandler.Routes())
	})

	return r
}

func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if err := db.Ping(ctx); err != nil {
			slog.Warn("Health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
