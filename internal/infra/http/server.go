package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
)

// Triggers are the out-of-band actions the admin surface exposes. A failed
// scheduled day has no automatic retry; these endpoints are how an operator
// re-runs it.
type Triggers struct {
	// RunSummary runs the summary pipeline now.
	RunSummary func(ctx context.Context) error
	// EnqueueCompile enqueues an edition compile for the date.
	EnqueueCompile func(ctx context.Context, date string) error
}

// Server wraps a chi.Router with the admin routes.
type Server struct {
	Router chi.Router
	log    zerolog.Logger
	srv    *http.Server
}

// NewServer creates the admin HTTP server.
func NewServer(logger zerolog.Logger, triggers Triggers) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		promhttp.Handler().ServeHTTP(w, req)
	})
	r.Post("/api/trigger/summary", func(w http.ResponseWriter, req *http.Request) {
		if err := triggers.RunSummary(req.Context()); err != nil {
			logger.Error().Err(err).Msg("admin: summary trigger failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	r.Post("/api/trigger/compile", func(w http.ResponseWriter, req *http.Request) {
		date := req.URL.Query().Get("date")
		if date == "" {
			date = time.Now().UTC().Format(domain.DateFormat)
		}
		if _, err := time.Parse(domain.DateFormat, date); err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if err := triggers.EnqueueCompile(req.Context(), date); err != nil {
			logger.Error().Err(err).Str("date", date).Msg("admin: compile trigger failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	return &Server{Router: r, log: logger}
}

// Start runs the http.Server until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()
	s.log.Info().Str("addr", addr).Msg("admin: server started")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
