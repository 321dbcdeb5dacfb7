package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seekerhq/intentcrawl/internal/api/response"
	"github.com/seekerhq/intentcrawl/internal/crawler"
)

// NewSteerHandler returns the handler for POST /api/v1/crawl/jobs/{jobID}/steer.
// A decision always succeeds if the job exists; when no link is pending it
// is simply discarded.
func NewSteerHandler(mgr JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}

		var decision crawler.Decision
		if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if err := mgr.Steer(id, decision); err != nil {
			if errors.Is(err, crawler.ErrJobNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		verb := "rejected"
		if decision.Approve {
			verb = "approved"
		}
		response.JSON(w, map[string]string{"message": "Steering decision recorded: " + verb})
	}
}
