// Package knowledge is the durable store for crawled content. Pages are
// split into chunks and written through the Store interface; retrieval is
// a simple substring search, newest first.
package knowledge

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
// Implementations must be safe for concurrent use by multiple crawl jobs.
type Store interface {
	Ping(ctx context.Context) error

	// StoreChunk persists one content chunk and returns its document ID.
	// Identifier derivation is not idempotent: re-storing the same
	// URL/chunk creates a duplicate row.
	StoreChunk(ctx context.Context, chunk Chunk) (uuid.UUID, error)

	Search(ctx context.Context, query string, limit int) ([]Document, error)
	Stats(ctx context.Context) (Stats, error)
}

// Chunk is one piece of a fetched page, ready for storage.
type Chunk struct {
	URL         string
	Title       string
	Domain      string
	ChunkIndex  int
	TotalChunks int
	Content     string
}

// Document is a stored chunk as returned by search.
type Document struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Domain      string    `json:"domain"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes the knowledge base.
type Stats struct {
	Documents int64 `json:"documents"`
	Domains   int64 `json:"domains"`
}
