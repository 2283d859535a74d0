// Package api provides the HTTP REST API of the grading engine.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/gradepilot/gradepilot/internal/logging"
	"github.com/gradepilot/gradepilot/internal/service"
)

// Server exposes the grading service over HTTP.
type Server struct {
	router         chi.Router
	svc            *service.Service
	log            *logging.Logger
	corsOrigins    []string
	requestTimeout time.Duration
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *logging.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithRequestTimeout bounds how long one request may run. Grading calls an
// upstream model, so the default is generous.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// NewServer creates the API server around the grading service.
func NewServer(svc *service.Service, opts ...ServerOption) *Server {
	s := &Server{
		svc:            svc,
		log:            logging.NewNop(),
		corsOrigins:    []string{"*"},
		requestTimeout: 120 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/grades", func(r chi.Router) {
			r.Get("/", s.handleListGrades)
			r.Post("/", s.handleGradeSubmission)
			r.Post("/batch", s.handleGradeBatch)
		})

		r.Route("/answer-keys", func(r chi.Router) {
			r.Post("/", s.handleGenerateAnswerKey)
			r.Post("/refine", s.handleRefineAnswerKey)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/distribution", s.handleDistribution)
			r.Get("/trends", s.handleTrends)
			r.Get("/compare", s.handleCompare)
			r.Route("/students", func(r chi.Router) {
				r.Get("/", s.handleStudentSummaries)
				r.Get("/search", s.handleSearchStudents)
				r.Get("/{studentName}/history", s.handleStudentHistory)
			})
			r.Get("/courses/{courseID}/stats", s.handleCourseStats)
		})

		r.Get("/status", s.handleStatus)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.WithContext(r.Context()).Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", "error", err)
		}
	}
}

// respondError maps a service error onto an HTTP status and a JSON body.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, body := httpError(err)
	s.respondJSON(w, status, body)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus reports the grading engine's health details.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Status(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
