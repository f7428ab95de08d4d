package chi

import (
	"context"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecdash/internal/domain/report"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	"github.com/kailas-cloud/vecdash/internal/metrics"
	healthuc "github.com/kailas-cloud/vecdash/internal/usecase/health"
)

// Searcher runs dashboard queries.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (report.Report, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options configure page rendering and request limits.
type Options struct {
	Title  string
	Layout string // "tabs" or "single"
	Limits request.Limits
	// APIKeys guard /api/*; empty disables auth.
	APIKeys []string
}

// Server serves the HTML dashboard and its JSON API.
type Server struct {
	search Searcher
	health HealthChecker
	opts   Options
	page   *template.Template
	logger *zap.Logger
}

// NewServer creates the HTTP server handlers.
func NewServer(search Searcher, health HealthChecker, opts Options, logger *zap.Logger) *Server {
	if opts.Layout == "" {
		opts.Layout = layoutTabs
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search: search,
		health: health,
		opts:   opts,
		page:   dashboardTemplate,
		logger: logger,
	}
}

// Router assembles the middleware stack and every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(Recoverer(s.logger))
	r.Use(WideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/", s.Dashboard)
	r.Post("/", s.DashboardSearch)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(BearerAuthMiddleware(s.opts.APIKeys))
		api.Post("/search", s.SearchAPI)
	})

	return r
}

// healthResponse is the JSON body of GET /health.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if rep.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(rep.Status), Checks: checks})
}
