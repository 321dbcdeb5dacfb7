// Package crawler implements the intent-guided crawl scheduler: a bounded
// breadth-first frontier whose link admission is decided by a relevance
// oracle, with medium-confidence links deferred to a human operator over a
// per-job steering channel.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/seekerhq/intentcrawl/internal/knowledge"
	"github.com/seekerhq/intentcrawl/internal/scraper"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

// Scheduler runs crawl traversals. One Scheduler serves all jobs; each
// Run call owns its frontier and counters exclusively, so concurrent jobs
// share nothing but the store and the fetcher, both safe for concurrent use.
type Scheduler struct {
	fetcher    scraper.Fetcher
	store      knowledge.Store
	router     *Router
	thresholds Thresholds
	delay      time.Duration
	chunkSize  int
}

// NewScheduler wires the scheduler's collaborators.
func NewScheduler(fetcher scraper.Fetcher, store knowledge.Store, router *Router, thresholds Thresholds, delay time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:    fetcher,
		store:      store,
		router:     router,
		thresholds: thresholds,
		delay:      delay,
		chunkSize:  knowledge.DefaultChunkSize,
	}
}

// RunParams carries everything one traversal needs.
type RunParams struct {
	Job     models.CrawlJob
	Arbiter *Arbiter
	Emitter *Emitter

	// OnProgress, if set, is called after each stored page with the
	// running page and chunk totals.
	OnProgress func(pages, chunks int)
}

// Result is the outcome of a finished traversal.
type Result struct {
	Pages  int
	Chunks int
	Err    error
}

// Run executes the traversal loop to completion: pop, fetch, store,
// evaluate links, delay, repeat. It is an explicit iterative loop — one
// deterministic step per frontier entry with no self-recursion, so
// long traversals cannot grow the stack.
//
// Fetch failures skip the page; oracle failures degrade to a heuristic
// inside the router; a storage failure is fatal and produces the terminal
// error event. Exactly one terminal event is emitted unless ctx is
// cancelled mid-run (job deletion), in which case the stream just ends.
func (s *Scheduler) Run(ctx context.Context, p RunParams) Result {
	start := time.Now()
	job := p.Job

	frontier := NewFrontier(job.MaxDepth, job.MaxPages)
	frontier.Enqueue(job.URL, 0)
	baseDomain := s.fetcher.Domain(job.URL)

	totalPages := 0
	totalChunks := 0

	slog.Info("starting crawl",
		"job_id", job.ID, "url", job.URL, "intent", job.Intent,
		"max_depth", job.MaxDepth, "max_pages", job.MaxPages)

	for {
		if err := ctx.Err(); err != nil {
			return Result{Pages: totalPages, Chunks: totalChunks, Err: err}
		}

		pageURL, depth, ok := frontier.Pop()
		if !ok {
			break
		}

		p.Emitter.Emit(CrawlingEvent{
			Type:     EventCrawling,
			URL:      pageURL,
			Progress: float64(totalPages) / float64(job.MaxPages),
		})

		page, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			slog.Warn("skipping unavailable page", "job_id", job.ID, "url", pageURL, "error", err)
			if !s.wait(ctx) {
				return Result{Pages: totalPages, Chunks: totalChunks, Err: ctx.Err()}
			}
			continue
		}

		chunks := knowledge.Split(page.Content, s.chunkSize)
		for i, content := range chunks {
			_, err := s.store.StoreChunk(ctx, knowledge.Chunk{
				URL:         page.URL,
				Title:       page.Title,
				Domain:      baseDomain,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
				Content:     content,
			})
			if err != nil {
				slog.Error("storing chunk failed, aborting crawl",
					"job_id", job.ID, "url", pageURL, "error", err)
				p.Emitter.EmitTerminal(ErrorEvent{Type: EventError, Error: "storing content: " + err.Error()})
				return Result{Pages: totalPages, Chunks: totalChunks, Err: err}
			}
		}

		frontier.MarkCrawled()
		totalPages++
		totalChunks += len(chunks)

		p.Emitter.Emit(StoredEvent{Type: EventStored, URL: pageURL, Chunks: len(chunks)})
		if p.OnProgress != nil {
			p.OnProgress(totalPages, totalChunks)
		}

		// Leaf-depth pages are stored but their links are never evaluated:
		// nothing they admit could be enqueued anyway.
		if depth < job.MaxDepth {
			admitted := s.discover(ctx, p, frontier, page, depth, baseDomain)
			if len(admitted) > 0 {
				p.Emitter.Emit(DiscoveredEvent{Type: EventDiscovered, Links: admitted, Count: len(admitted)})
			}
		}

		// Politeness delay: once per popped entry, regardless of how many
		// links it produced.
		if !s.wait(ctx) {
			return Result{Pages: totalPages, Chunks: totalChunks, Err: ctx.Err()}
		}
	}

	duration := time.Since(start)
	p.Emitter.EmitTerminal(CompletedEvent{
		Type:            EventCompleted,
		TotalPages:      totalPages,
		TotalChunks:     totalChunks,
		DurationSeconds: duration.Seconds(),
	})

	slog.Info("crawl completed",
		"job_id", job.ID, "pages", totalPages, "chunks", totalChunks,
		"duration_ms", duration.Milliseconds())

	return Result{Pages: totalPages, Chunks: totalChunks}
}

// discover evaluates the page's outbound links sequentially, enqueuing
// admitted ones at depth+1. A steering round-trip blocks evaluation of the
// rest of the page's links until resolved, so steering requests are raised
// strictly in frontier-pop order.
func (s *Scheduler) discover(ctx context.Context, p RunParams, frontier *Frontier, page *models.Page, depth int, baseDomain string) []string {
	var admitted []string

	for _, link := range page.Links {
		if frontier.Seen(link.URL) {
			continue
		}

		verdict := s.router.Evaluate(ctx, Candidate{
			URL:        link.URL,
			AnchorText: link.Text,
			Intent:     p.Job.Intent,
			BaseDomain: baseDomain,
		})

		switch s.thresholds.Tier(verdict) {
		case TierAdmit:
			frontier.Enqueue(link.URL, depth+1)
			admitted = append(admitted, link.URL)

		case TierAsk:
			p.Emitter.Emit(SteeringNeededEvent{
				Type:       EventSteeringNeeded,
				Link:       link.URL,
				Reasoning:  verdict.Reasoning,
				Confidence: verdict.Confidence,
				Waiting:    true,
			})
			if p.Arbiter.Await(ctx, link.URL) {
				frontier.Enqueue(link.URL, depth+1)
				admitted = append(admitted, link.URL)
			}

		case TierReject:
			slog.Debug("rejecting link",
				"job_id", p.Job.ID, "link", link.URL,
				"reasoning", verdict.Reasoning, "confidence", verdict.Confidence)
		}
	}

	return admitted
}

// wait sleeps the inter-request delay; returns false if ctx was cancelled.
func (s *Scheduler) wait(ctx context.Context) bool {
	if s.delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.delay):
		return true
	}
}
