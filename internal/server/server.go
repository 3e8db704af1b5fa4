// Package server implements the user-layouts HTTP service.
//
// The service persists per-user dashboard customization: one record per
// (user, page) holding saved geometry per breakpoint plus hidden blocks.
// Records are re-validated on every read against the caller's current
// permissions, so a revoked module silently disappears from stored layouts
// instead of leaking stale blocks.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tmarchal/pagegrid/internal/config"
	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
	"github.com/tmarchal/pagegrid/pkg/observability"
	"github.com/tmarchal/pagegrid/pkg/registry"
	"github.com/tmarchal/pagegrid/pkg/store"
)

// Server wires the HTTP routes to a record store and the page registry.
type Server struct {
	cfg      *config.Config
	store    store.Store
	registry registry.Registry
	logger   *log.Logger
	tokens   *tokenStore
}

// New creates a server around the given store. The page registry defaults
// to the console's built-in one.
func New(cfg *config.Config, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		registry: registry.Default(),
		logger:   logger,
		tokens:   newTokenStore(),
	}
}

// SetRegistry replaces the page registry. Call before Router.
func (s *Server) SetRegistry(r registry.Registry) {
	s.registry = r
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/user-layouts/{pageKey}", s.handleGetLayout)
		r.Put("/user-layouts/{pageKey}", s.handlePutLayout)
		r.Delete("/user-layouts/{pageKey}", s.handleDeleteLayout)
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Listen, "backend", s.cfg.Store.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("shut down")
	return nil
}

// OpenStore creates the record store selected by the configuration. The
// context bounds connection setup for the network backends.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendFile:
		return store.NewFileStore(cfg.Store.File.Dir)
	case config.BackendRedis:
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			TTL:      cfg.Store.Redis.TTL.Duration,
		})
	case config.BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return nil, pgerrors.New(pgerrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Store.Backend)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs each request and feeds the service hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"elapsed", elapsed.Round(time.Millisecond),
		)
		observability.Service().OnRequest(r.Context(), r.Method, route, ww.Status(), elapsed)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the wire form of a request failure.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code pgerrors.Code, msg string) {
	writeJSON(w, status, errorBody{Code: string(code), Message: msg})
}
