// Package api exposes sessions and notes over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/pipeline"
	"github.com/yildizm/vidsynth/internal/rag"
	"github.com/yildizm/vidsynth/internal/transcript"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP server
type Options struct {
	Addr         string
	Language     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	QueryTimeout time.Duration
	Logger       *logger.Logger
}

// Server serves the session and notes API
type Server struct {
	router   *chi.Mux
	pipeline *pipeline.Pipeline
	sessions *rag.SessionStore
	options  Options
	logger   *logger.Logger
}

// NewServer creates a server backed by p. Every session in sessions is
// independent of the others.
func NewServer(p *pipeline.Pipeline, sessions *rag.SessionStore, opts Options) *Server {
	if opts.Language == "" {
		opts.Language = transcript.DefaultLanguage
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(opts.Logger))
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		pipeline: p,
		sessions: sessions,
		options:  opts,
		logger:   opts.Logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/notes", s.notes)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.deleteSession)
				r.Post("/video", s.replaceVideo)
				r.Post("/questions", s.ask)
				r.Get("/history", s.history)
			})
		})
	})

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.options.Addr,
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening on %s", s.options.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.DebugWithFields("request", []logger.Field{
				logger.F("method", r.Method),
				logger.F("path", r.URL.Path),
				logger.F("status", ww.Status()),
				logger.F("request_id", middleware.GetReqID(r.Context())),
				logger.Duration(time.Since(start)),
			})
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
