package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// CrawlJob tracks one crawl run. The API returns a job_id on POST
// /api/v1/crawl/jobs; opening the job's SSE stream starts the traversal,
// and GET /api/v1/crawl/jobs/{job_id} reports status and counters.
type CrawlJob struct {
	ID           uuid.UUID `json:"job_id"`
	URL          string    `json:"url"`
	Intent       string    `json:"intent"`
	Status       string    `json:"status"`
	MaxDepth     int       `json:"max_depth"`
	MaxPages     int       `json:"max_pages"`
	PagesCrawled int       `json:"pages_crawled"`
	ChunksStored int       `json:"chunks_stored"`
	CreatedAt    time.Time `json:"created_at"`
}
