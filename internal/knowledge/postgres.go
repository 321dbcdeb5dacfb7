package knowledge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) StoreChunk(ctx context.Context, chunk Chunk) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, url, title, domain, chunk_index, total_chunks, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		id, chunk.URL, chunk.Title, chunk.Domain, chunk.ChunkIndex, chunk.TotalChunks, chunk.Content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store chunk: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, title, domain, chunk_index, total_chunks, content, created_at
		 FROM documents
		 WHERE content ILIKE '%' || $1 || '%' OR title ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC
		 LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.URL, &d.Title, &d.Domain, &d.ChunkIndex,
			&d.TotalChunks, &d.Content, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT domain) FROM documents`,
	).Scan(&stats.Documents, &stats.Domains)
	if err != nil {
		return Stats{}, fmt.Errorf("knowledge stats: %w", err)
	}
	return stats, nil
}

var _ Store = (*PostgresStore)(nil)
