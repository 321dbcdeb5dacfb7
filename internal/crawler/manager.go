package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seekerhq/intentcrawl/internal/cache"
	"github.com/seekerhq/intentcrawl/internal/config"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrStreamActive = errors.New("job stream already active")
)

// statusCacheTTL bounds how long a job's status lingers in redis after its
// last transition. Jobs are not persisted; the cache is observability only.
const statusCacheTTL = 30 * time.Minute

// jobState is everything the manager tracks for one job. The CrawlJob
// snapshot is mutated only under the manager's lock; the traversal
// goroutine reports progress through callbacks rather than touching it.
type jobState struct {
	job     models.CrawlJob
	arbiter *Arbiter
	emitter *Emitter
	cancel  context.CancelFunc
	started bool
}

// Manager is the lifetime-scoped job registry: it owns the mapping from
// job ID to job state plus its steering arbiter. There is no ambient
// global state; everything routes through an injected *Manager.
type Manager struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*jobState

	scheduler *Scheduler
	cache     cache.Cache
	defaults  config.CrawlerConfig
}

// NewManager creates a Manager. cache may be nil in tests.
func NewManager(scheduler *Scheduler, c cache.Cache, defaults config.CrawlerConfig) *Manager {
	return &Manager{
		jobs:      make(map[uuid.UUID]*jobState),
		scheduler: scheduler,
		cache:     c,
		defaults:  defaults,
	}
}

// Create registers a new pending job. Depth and page overrides <= 0 fall
// back to the configured defaults.
func (m *Manager) Create(url, intent string, maxDepth, maxPages int) models.CrawlJob {
	if maxDepth <= 0 {
		maxDepth = m.defaults.MaxDepth
	}
	if maxPages <= 0 {
		maxPages = m.defaults.MaxPages
	}

	job := models.CrawlJob{
		ID:        uuid.New(),
		URL:       url,
		Intent:    intent,
		Status:    models.JobStatusPending,
		MaxDepth:  maxDepth,
		MaxPages:  maxPages,
		CreatedAt: time.Now().UTC(),
	}

	st := &jobState{
		job:     job,
		arbiter: NewArbiter(m.defaults.SteeringTimeout),
		emitter: NewEmitter(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = st
	m.mu.Unlock()

	m.cacheStatus(job.ID, job.Status)
	slog.Info("created crawl job", "job_id", job.ID, "url", url, "intent", intent)

	return job
}

// Get returns a snapshot of one job.
func (m *Manager) Get(id uuid.UUID) (models.CrawlJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.jobs[id]
	if !ok {
		return models.CrawlJob{}, false
	}
	return st.job, true
}

// List returns snapshots of all jobs, oldest first.
func (m *Manager) List() []models.CrawlJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]models.CrawlJob, 0, len(m.jobs))
	for _, st := range m.jobs {
		jobs = append(jobs, st.job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// Start launches the traversal goroutine and returns the job's event
// stream. A job's stream can be consumed exactly once; a second Start
// returns ErrStreamActive. The pending -> running transition happens here.
func (m *Manager) Start(id uuid.UUID) (<-chan Event, error) {
	m.mu.Lock()
	st, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrJobNotFound
	}
	if st.started {
		m.mu.Unlock()
		return nil, ErrStreamActive
	}
	st.started = true
	st.job.Status = models.JobStatusRunning

	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel

	job := st.job
	arbiter := st.arbiter
	emitter := st.emitter
	m.mu.Unlock()

	m.cacheStatus(id, models.JobStatusRunning)

	go m.run(ctx, job, arbiter, emitter)

	return emitter.Events(), nil
}

// run drives one traversal in its own goroutine and records the terminal
// state. It recovers from panics so a bug in the loop fails the one job
// rather than the process.
func (m *Manager) run(ctx context.Context, job models.CrawlJob, arbiter *Arbiter, emitter *Emitter) {
	defer emitter.Close()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in crawl traversal", "job_id", job.ID, "panic", r)
			emitter.EmitTerminal(ErrorEvent{Type: EventError, Error: fmt.Sprintf("internal error: %v", r)})
			m.finish(job.ID, models.JobStatusFailed)
		}
	}()

	result := m.scheduler.Run(ctx, RunParams{
		Job:     job,
		Arbiter: arbiter,
		Emitter: emitter,
		OnProgress: func(pages, chunks int) {
			m.mu.Lock()
			if st, ok := m.jobs[job.ID]; ok {
				st.job.PagesCrawled = pages
				st.job.ChunksStored = chunks
			}
			m.mu.Unlock()
		},
	})

	switch {
	case result.Err == nil:
		m.finish(job.ID, models.JobStatusCompleted)
	case errors.Is(result.Err, context.Canceled):
		// Deleted mid-run; the job is already gone from the registry.
	default:
		m.finish(job.ID, models.JobStatusFailed)
	}
}

// finish records a terminal status for a job that still exists.
func (m *Manager) finish(id uuid.UUID, status string) {
	m.mu.Lock()
	st, ok := m.jobs[id]
	if ok {
		st.job.Status = status
	}
	m.mu.Unlock()

	if ok {
		m.cacheStatus(id, status)
	}
}

// Steer routes a decision to the job's arbiter. Decisions for jobs with no
// pending link are accepted and discarded; decisions for unknown jobs are
// an error.
func (m *Manager) Steer(id uuid.UUID, d Decision) error {
	m.mu.Lock()
	st, ok := m.jobs[id]
	m.mu.Unlock()

	if !ok {
		return ErrJobNotFound
	}

	delivered := st.arbiter.Submit(d)
	slog.Info("steering decision",
		"job_id", id, "approve", d.Approve, "link", d.Link, "delivered", delivered)
	return nil
}

// Delete removes a job and its steering channel. From the perspective of
// new steering submissions the removal is atomic: once Delete returns,
// Steer reports ErrJobNotFound. A traversal suspended on the arbiter is
// cancelled and observes no further decisions.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	st, ok := m.jobs[id]
	if ok {
		delete(m.jobs, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrJobNotFound
	}

	if st.cancel != nil {
		st.cancel()
	}
	if m.cache != nil {
		if err := m.cache.DeleteJobStatus(context.Background(), id); err != nil {
			slog.Warn("failed to drop cached job status", "job_id", id, "error", err)
		}
	}

	slog.Info("deleted crawl job", "job_id", id)
	return nil
}

func (m *Manager) cacheStatus(id uuid.UUID, status string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetJobStatus(context.Background(), id, status, statusCacheTTL); err != nil {
		slog.Warn("failed to cache job status", "job_id", id, "error", err)
	}
}
