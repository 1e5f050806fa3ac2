// Package server exposes the planner over HTTP: a chat endpoint that
// runs the full message pipeline, plus read endpoints for the stored
// wedding profile, vendors, budget, and tasks.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/aisle-dev/aisle/internal/chat"
	"github.com/aisle-dev/aisle/internal/store"
)

// Config holds server settings.
type Config struct {
	ListenAddr  string
	CORSOrigins []string      // allowed origins, empty = none
	RateLimit   int           // chat requests per window per session (0 = default)
	RateWindow  time.Duration // sliding window size (0 = default)
	SessionTTL  time.Duration // idle session lifetime (0 = default)
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	store    *store.Store
	chat     *chat.Service
	sessions *sessionManager
	limiter  *rateLimiter
	log      *slog.Logger
}

// New wires a server. Pass a nil logger to use slog.Default.
func New(cfg Config, st *store.Store, chatSvc *chat.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 20
	}
	if cfg.RateWindow == 0 {
		cfg.RateWindow = time.Minute
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		chat:     chatSvc,
		sessions: newSessionManager(st, cfg.SessionTTL),
		limiter:  newRateLimiter(cfg.RateLimit, cfg.RateWindow),
		log:      log,
	}
}

// Router builds the route table with the middleware chain applied.
func (s *Server) Router() http.Handler {
	router := httprouter.New()

	router.POST("/api/chat", s.handleChat)
	router.GET("/api/wedding", s.handleGetWedding)
	router.GET("/api/vendors", s.handleGetVendors)
	router.GET("/api/budget", s.handleGetBudget)
	router.GET("/api/tasks", s.handleGetTasks)
	router.GET("/healthz", s.handleHealthz)

	var h http.Handler = router
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)
	return h
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.limiter.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		s.limiter.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
