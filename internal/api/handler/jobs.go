// Package handler contains the HTTP handlers for the crawl job lifecycle,
// the SSE event stream, steering submission, and knowledge retrieval.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seekerhq/intentcrawl/internal/api/response"
	"github.com/seekerhq/intentcrawl/internal/crawler"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

// JobManager is the interface the handlers depend on. *crawler.Manager
// satisfies it.
type JobManager interface {
	Create(url, intent string, maxDepth, maxPages int) models.CrawlJob
	Get(id uuid.UUID) (models.CrawlJob, bool)
	List() []models.CrawlJob
	Delete(id uuid.UUID) error
	Steer(id uuid.UUID, d crawler.Decision) error
	Start(id uuid.UUID) (<-chan crawler.Event, error)
}

type createJobResponse struct {
	models.CrawlJob
	StreamURL string `json:"stream_url"`
	SteerURL  string `json:"steer_url"`
}

// NewCreateJobHandler returns the handler for POST /api/v1/crawl/jobs.
func NewCreateJobHandler(mgr JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL      string `json:"url"`
			Intent   string `json:"intent"`
			MaxDepth int    `json:"max_depth"`
			MaxPages int    `json:"max_pages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Intent == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "intent is required", nil)
			return
		}
		u, err := url.Parse(req.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"url must be a valid http or https URL", nil)
			return
		}

		job := mgr.Create(req.URL, req.Intent, req.MaxDepth, req.MaxPages)

		response.Created(w, createJobResponse{
			CrawlJob:  job,
			StreamURL: fmt.Sprintf("/api/v1/crawl/jobs/%s/stream", job.ID),
			SteerURL:  fmt.Sprintf("/api/v1/crawl/jobs/%s/steer", job.ID),
		})
	}
}

// NewListJobsHandler returns the handler for GET /api/v1/crawl/jobs.
func NewListJobsHandler(mgr JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs := mgr.List()
		response.JSON(w, map[string]any{
			"jobs":  jobs,
			"total": len(jobs),
		})
	}
}

// NewGetJobHandler returns the handler for GET /api/v1/crawl/jobs/{jobID}.
func NewGetJobHandler(mgr JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}
		job, found := mgr.Get(id)
		if !found {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
			return
		}
		response.JSON(w, job)
	}
}

// NewDeleteJobHandler returns the handler for DELETE /api/v1/crawl/jobs/{jobID}.
func NewDeleteJobHandler(mgr JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}
		if err := mgr.Delete(id); err != nil {
			if errors.Is(err, crawler.ErrJobNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, map[string]string{"message": "Job " + id.String() + " deleted"})
	}
}

// jobID parses the {jobID} URL parameter, writing a 400 on failure.
func jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "jobID")
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"jobID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
