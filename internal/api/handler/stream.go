package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/seekerhq/intentcrawl/internal/api/response"
	"github.com/seekerhq/intentcrawl/internal/crawler"
)

// NewStreamHandler returns the handler for GET /api/v1/crawl/jobs/{jobID}/stream.
//
// Opening the stream starts the traversal; the response is a live SSE
// sequence that flushes after every event so steering requests reach the
// client promptly, and ends after the terminal completed/error event. Each
// job's stream can be consumed exactly once.
func NewStreamHandler(mgr JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}

		flusher, canFlush := w.(http.Flusher)
		if !canFlush {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Streaming unsupported by connection", nil)
			return
		}

		events, err := mgr.Start(id)
		if err != nil {
			switch {
			case errors.Is(err, crawler.ErrJobNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
			case errors.Is(err, crawler.ErrStreamActive):
				response.Error(w, http.StatusConflict, "STREAM_ACTIVE",
					"Job stream is already being consumed", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case ev, open := <-events:
				if !open {
					return
				}
				if err := writeSSE(w, ev); err != nil {
					// Client went away; the traversal keeps running for its
					// storage side-effects. Drain nothing, just stop writing.
					slog.Debug("event stream consumer disconnected", "job_id", id, "error", err)
					return
				}
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}

// writeSSE frames one event as a named SSE event with a JSON payload.
func writeSSE(w http.ResponseWriter, ev crawler.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind(), data)
	return err
}
