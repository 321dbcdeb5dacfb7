package knowledge_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/seekerhq/intentcrawl/internal/knowledge"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("intentcrawl_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = knowledge.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func testChunk(url, content string, index, total int) knowledge.Chunk {
	return knowledge.Chunk{
		URL:         url,
		Title:       "Test Page",
		Domain:      "ex.com",
		ChunkIndex:  index,
		TotalChunks: total,
		Content:     content,
	}
}

func TestStoreChunk(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	id, err := s.StoreChunk(ctx, testChunk("https://ex.com/docs", "all about widgets", 0, 1))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestStoreChunk_DuplicatesAllowed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	chunk := testChunk("https://ex.com/docs", "same content", 0, 1)
	first, err := s.StoreChunk(ctx, chunk)
	require.NoError(t, err)
	second, err := s.StoreChunk(ctx, chunk)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "re-storing creates a new row")
}

func TestSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	_, err := s.StoreChunk(ctx, testChunk("https://ex.com/widgets", "everything about widgets", 0, 1))
	require.NoError(t, err)
	_, err = s.StoreChunk(ctx, testChunk("https://ex.com/gadgets", "gadget catalog", 0, 1))
	require.NoError(t, err)

	docs, err := s.Search(ctx, "widget", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "https://ex.com/widgets", docs[0].URL)
	assert.Equal(t, "ex.com", docs[0].Domain)
	assert.Equal(t, 0, docs[0].ChunkIndex)
	assert.NotEqual(t, uuid.Nil, docs[0].ID)
	assert.False(t, docs[0].CreatedAt.IsZero())
}

func TestSearch_MatchesTitle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	chunk := testChunk("https://ex.com/api", "reference material", 0, 1)
	chunk.Title = "Widget API"
	_, err := s.StoreChunk(ctx, chunk)
	require.NoError(t, err)

	docs, err := s.Search(ctx, "widget", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	_, err := s.StoreChunk(ctx, testChunk("https://ex.com/a", "WIDGET manual", 0, 1))
	require.NoError(t, err)

	docs, err := s.Search(ctx, "widget", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSearch_LimitClamped(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := s.StoreChunk(ctx, testChunk("https://ex.com/page", "repeated term", i, 25))
		require.NoError(t, err)
	}

	docs, err := s.Search(ctx, "repeated", 0)
	require.NoError(t, err)
	assert.Len(t, docs, 20, "non-positive limit falls back to the default")

	docs, err = s.Search(ctx, "repeated", 5)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Domains)

	_, err = s.StoreChunk(ctx, testChunk("https://ex.com/a", "one", 0, 1))
	require.NoError(t, err)
	chunk := testChunk("https://other.com/b", "two", 0, 1)
	chunk.Domain = "other.com"
	_, err = s.StoreChunk(ctx, chunk)
	require.NoError(t, err)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Documents)
	assert.Equal(t, int64(2), stats.Domains)
}

func TestStorePing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := knowledge.NewPostgresStore(pool)

	assert.NoError(t, s.Ping(context.Background()))
}
