package handler

import (
	"net/http"
	"strconv"

	"github.com/seekerhq/intentcrawl/internal/api/response"
	"github.com/seekerhq/intentcrawl/internal/knowledge"
)

// NewKnowledgeSearchHandler returns the handler for GET /api/v1/knowledge/search.
func NewKnowledgeSearchHandler(store knowledge.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "q is required", nil)
			return
		}

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a positive integer", nil)
				return
			}
			limit = n
		}

		docs, err := store.Search(r.Context(), query, limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Search failed", nil)
			return
		}
		if docs == nil {
			docs = []knowledge.Document{}
		}

		response.JSON(w, map[string]any{
			"results": docs,
			"count":   len(docs),
		})
	}
}

// NewKnowledgeStatsHandler returns the handler for GET /api/v1/knowledge/stats.
func NewKnowledgeStatsHandler(store knowledge.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Stats query failed", nil)
			return
		}
		response.JSON(w, stats)
	}
}
