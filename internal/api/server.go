package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/snarg/lectern"
	"github.com/snarg/lectern/internal/config"
	"github.com/snarg/lectern/internal/metrics"
	"github.com/snarg/lectern/internal/session"
	"github.com/snarg/lectern/internal/studypack"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewServer(cfg *config.Config, store *session.Store, prep TrackPreparer,
	tr Transcriber, req studypack.Requester, version string, startTime time.Time,
	log zerolog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      Router(cfg, store, prep, tr, req, version, startTime, log),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

// Router builds the full route tree. Split out from NewServer so tests can
// run it under httptest.
func Router(cfg *config.Config, store *session.Store, prep TrackPreparer,
	tr Transcriber, req studypack.Requester, version string, startTime time.Time,
	log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(CORS)
	r.Use(metrics.InstrumentHandler)

	health := NewHealthHandler(tr, req.Mode(), version, startTime)
	r.Get("/api/v1/health", health.ServeHTTP)
	r.Get("/api/v1/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(lectern.OpenAPISpec)
	})
	r.Handle("/metrics", promhttp.Handler())

	auth := NewAuthHandler(store, log)
	r.Post("/api/v1/auth/signup", auth.Signup)
	r.Post("/api/v1/auth/login", auth.Login)

	lectures := NewLectureHandler(prep, tr, req,
		cfg.TranscribeTimeout, cfg.GenerateTimeout, cfg.MaxUploadSize, cfg.TempDir, log)
	quizzes := NewQuizHandler(log)
	history := NewHistoryHandler(store, log)

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(store))
		r.Post("/api/v1/auth/logout", auth.Logout)
		r.Post("/api/v1/lectures", lectures.Upload)
		r.Post("/api/v1/lectures/transcript", lectures.Transcript)
		r.Post("/api/v1/quiz/submit", quizzes.Submit)
		r.Post("/api/v1/quiz/retake", quizzes.Retake)
		r.Get("/api/v1/history", history.List)
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
