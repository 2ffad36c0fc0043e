// Package http exposes the chat API over REST: the session-based chat
// endpoint, read-side lookups for recommendations and class averages,
// and a health probe over the data stores.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/study-buddy/study-buddy-backend/config"
	"github.com/study-buddy/study-buddy-backend/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// ChatRouter handles one chat turn. Satisfied by the chat role router.
type ChatRouter interface {
	Handle(ctx context.Context, sessionID, text string) (string, error)
}

// Queries bundles the read-side handlers the HTTP surface exposes
// directly, outside the chat flow.
type Queries struct {
	ListRecommendations *query.ListRecommendationsHandler
	GetClassAverage     *query.GetClassAverageHandler
}

// Dependencies contains everything the server needs.
type Dependencies struct {
	Chat     ChatRouter
	Queries  Queries
	Postgres Pinger
	Redis    Pinger
	Logger   *slog.Logger
}

// Server is the HTTP front of the backend.
type Server struct {
	config     config.HTTPConfig
	httpServer *http.Server
	chat       ChatRouter
	queries    Queries
	postgres   Pinger
	redis      Pinger
	logger     *slog.Logger
}

// NewServer creates the server and wires routes and middleware.
func NewServer(cfg config.HTTPConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		chat:     deps.Chat,
		queries:  deps.Queries,
		postgres: deps.Postgres,
		redis:    deps.Redis,
		logger:   logger.With("component", "http_server"),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/students/{roll:[0-9]+}/recommendations", s.handleRecommendations).Methods(http.MethodGet)
	api.HandleFunc("/classes/{grade:[0-9]+}/averages/{subject}", s.handleClassAverage).Methods(http.MethodGet)

	var handler http.Handler = router
	if len(cfg.AllowedOrigins) > 0 {
		handler = corsMiddleware(cfg.AllowedOrigins)(handler)
	}
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Start runs the server until it is shut down. Returns nil on a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.config.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
