// Package httpapi serves the planning kernel and stored projects as JSON
// over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/alexanderramin/planpilot/internal/service"
)

// Services are the use cases the API exposes. Any may be nil, in which
// case its routes are not registered.
type Services struct {
	Projects   service.ProjectService
	Generation service.GenerationService
	KPIs       service.KPIService
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
	// Now is the reference date when a request omits one.
	Now func() time.Time
}

type Server struct {
	svc    Services
	auth   Auth
	cors   *cors.Cors
	logger *slog.Logger
	now    func() time.Time
}

func NewServer(svc Services, opts Options) *Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		svc:  svc,
		auth: NewAuth(opts.JWTSecret),
		cors: cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}),
		logger: logger,
		now:    now,
	}
}

// Handler returns the routed, CORS-wrapped and logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/kpis", s.computeKPIs)
	mux.HandleFunc("POST /api/timeline", s.buildTimeline)
	mux.HandleFunc("POST /api/audio/wav", s.encodeWAV)

	if s.svc.Projects != nil {
		mux.Handle("GET /api/projects", s.auth.Wrap(http.HandlerFunc(s.listProjects)))
		mux.Handle("GET /api/projects/{id}", s.auth.Wrap(http.HandlerFunc(s.getProject)))
		mux.Handle("PUT /api/projects/{id}", s.auth.Wrap(http.HandlerFunc(s.putProject)))
		mux.Handle("DELETE /api/projects/{id}", s.auth.Wrap(http.HandlerFunc(s.deleteProject)))
	}
	if s.svc.KPIs != nil {
		mux.Handle("GET /api/projects/{id}/kpis", s.auth.Wrap(http.HandlerFunc(s.projectKPIs)))
	}
	if s.svc.Generation != nil {
		mux.Handle("POST /api/projects/{id}/generate/{stage}", s.auth.Wrap(http.HandlerFunc(s.generate)))
	}

	return s.cors.Handler(s.logRequests(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
