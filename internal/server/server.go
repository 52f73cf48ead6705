// Package server exposes client sessions over HTTP so a browser or script
// can drive the query form, share links and path results.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sanonone/netsearch/internal/config"
	"github.com/sanonone/netsearch/pkg/session"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"go.uber.org/zap"
)

// Server holds the HTTP interface and the open client sessions.
type Server struct {
	backend  session.Backend
	codec    sharelink.Codec
	logger   *zap.Logger
	sessions *SessionManager

	httpServer  *http.Server
	authToken   string
	callTimeout time.Duration
}

// NewServer wires the routes of the façade around backend.
func NewServer(cfg config.Config, backend session.Backend, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		backend: backend,
		codec: sharelink.Codec{
			BaseURL:     cfg.Link.BaseURL,
			Path:        cfg.Link.Path,
			HashRouting: cfg.Link.HashRouting,
		},
		logger:      logger.Named("http"),
		authToken:   cfg.AuthToken,
		callTimeout: cfg.Client.Timeout,
	}
	s.sessions = NewSessionManager(func(id string) *session.Session {
		return session.New(id, s.backend, s.codec, logger)
	})

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// detach returns a context for service calls made on behalf of r. The call
// outlives a client that hangs up, so a started search still lands in its
// session; it stays bounded by the client timeout.
func (s *Server) detach(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return context.WithCancel(ctx)
}

// routes chains Recovery -> Logging -> Auth -> handlers. Health and metrics
// stay reachable without a token.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(s.RecoveryMiddleware)
	r.Use(s.LoggingMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCloseSession)
				r.Put("/query", s.handleReplaceQuery)
				r.Get("/complete", s.handleComplete)
				r.Post("/search", s.handleSearch)
				r.Get("/xrefs", s.handleXrefs)
				r.Post("/buckets/{bucketID}/toggle", s.handleToggleBucket)
			})
		})

		r.Route("/links", func(r chi.Router) {
			r.Post("/encode", s.handleEncodeLink)
			r.Get("/decode", s.handleDecodeLink)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and closes every session.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown of HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	s.sessions.CloseAll()
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
