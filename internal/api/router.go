package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/seekerhq/intentcrawl/internal/api/middleware"
	"github.com/seekerhq/intentcrawl/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateJobHandler http.HandlerFunc
	ListJobsHandler  http.HandlerFunc
	GetJobHandler    http.HandlerFunc
	DeleteJobHandler http.HandlerFunc
	StreamHandler    http.HandlerFunc
	SteerHandler     http.HandlerFunc

	KnowledgeSearchHandler http.HandlerFunc
	KnowledgeStatsHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
		}
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/crawl/jobs", orNotImplemented(deps.CreateJobHandler))
		r.Get("/api/v1/crawl/jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/api/v1/crawl/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))
		r.Delete("/api/v1/crawl/jobs/{jobID}", orNotImplemented(deps.DeleteJobHandler))
		r.Get("/api/v1/crawl/jobs/{jobID}/stream", orNotImplemented(deps.StreamHandler))
		r.Post("/api/v1/crawl/jobs/{jobID}/steer", orNotImplemented(deps.SteerHandler))

		r.Get("/api/v1/knowledge/search", orNotImplemented(deps.KnowledgeSearchHandler))
		r.Get("/api/v1/knowledge/stats", orNotImplemented(deps.KnowledgeStatsHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
