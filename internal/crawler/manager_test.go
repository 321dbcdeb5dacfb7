package crawler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekerhq/intentcrawl/internal/ai/mock"
	"github.com/seekerhq/intentcrawl/internal/config"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

func testManager(fetcher *stubFetcher) *Manager {
	s := NewScheduler(fetcher, &memStore{}, NewRouter(mock.NewMockOracle(), time.Second),
		Thresholds{AutoAdmit: 0.8, AskHuman: 0.5}, 0)
	return NewManager(s, nil, config.CrawlerConfig{
		MaxDepth:        3,
		MaxPages:        50,
		SteeringTimeout: 50 * time.Millisecond,
	})
}

func singlePageFetcher() *stubFetcher {
	return &stubFetcher{pages: map[string]*models.Page{
		"https://ex.com": page("https://ex.com", "welcome"),
	}}
}

func TestManager_CreateAppliesDefaults(t *testing.T) {
	m := testManager(singlePageFetcher())

	job := m.Create("https://ex.com", "docs only", 0, 0)
	assert.Equal(t, 3, job.MaxDepth)
	assert.Equal(t, 50, job.MaxPages)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.NotEqual(t, uuid.Nil, job.ID)

	job = m.Create("https://ex.com", "docs only", 1, 2)
	assert.Equal(t, 1, job.MaxDepth)
	assert.Equal(t, 2, job.MaxPages)
}

func TestManager_GetAndList(t *testing.T) {
	m := testManager(singlePageFetcher())

	_, ok := m.Get(uuid.New())
	assert.False(t, ok)
	assert.Empty(t, m.List())

	first := m.Create("https://ex.com", "docs", 1, 1)
	time.Sleep(2 * time.Millisecond)
	second := m.Create("https://ex.com/other", "docs", 1, 1)

	got, ok := m.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, first.URL, got.URL)

	jobs := m.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, first.ID, jobs[0].ID, "list is ordered oldest first")
	assert.Equal(t, second.ID, jobs[1].ID)
}

func TestManager_StartRunsToCompletion(t *testing.T) {
	m := testManager(singlePageFetcher())
	job := m.Create("https://ex.com", "docs only", 1, 5)

	events, err := m.Start(job.ID)
	require.NoError(t, err)

	var kinds []string
	for ev := range events {
		kinds = append(kinds, ev.Kind())
	}
	assert.Equal(t, []string{"crawling", "stored", "completed"}, kinds)

	got, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 1, got.PagesCrawled)
	assert.Equal(t, 1, got.ChunksStored)
}

func TestManager_StartUnknownJob(t *testing.T) {
	m := testManager(singlePageFetcher())
	_, err := m.Start(uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestManager_SecondStartRejected(t *testing.T) {
	m := testManager(singlePageFetcher())
	job := m.Create("https://ex.com", "docs only", 1, 5)

	events, err := m.Start(job.ID)
	require.NoError(t, err)

	_, err = m.Start(job.ID)
	assert.ErrorIs(t, err, ErrStreamActive)

	for range events {
	}
}

func TestManager_FailedCrawlMarksJobFailed(t *testing.T) {
	fetcher := singlePageFetcher()
	s := NewScheduler(fetcher, &memStore{storeErr: assert.AnError},
		NewRouter(mock.NewMockOracle(), time.Second), Thresholds{AutoAdmit: 0.8, AskHuman: 0.5}, 0)
	m := NewManager(s, nil, config.CrawlerConfig{MaxDepth: 1, MaxPages: 5, SteeringTimeout: time.Second})

	job := m.Create("https://ex.com", "docs only", 1, 5)
	events, err := m.Start(job.ID)
	require.NoError(t, err)

	var last Event
	for ev := range events {
		last = ev
	}
	require.NotNil(t, last)
	assert.Equal(t, "error", last.Kind())

	got, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusFailed, got.Status)
}

func TestManager_SteerUnknownJob(t *testing.T) {
	m := testManager(singlePageFetcher())
	err := m.Steer(uuid.New(), Decision{Approve: true})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestManager_SteerWithNothingPendingIsDiscarded(t *testing.T) {
	m := testManager(singlePageFetcher())
	job := m.Create("https://ex.com", "docs only", 1, 5)

	// No traversal is waiting; the decision is accepted and dropped.
	err := m.Steer(job.ID, Decision{Approve: true})
	assert.NoError(t, err)
}

func TestManager_Delete(t *testing.T) {
	m := testManager(singlePageFetcher())
	job := m.Create("https://ex.com", "docs only", 1, 5)

	require.NoError(t, m.Delete(job.ID))

	_, ok := m.Get(job.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, m.Delete(job.ID), ErrJobNotFound)
	assert.ErrorIs(t, m.Steer(job.ID, Decision{Approve: true}), ErrJobNotFound)
}

func TestManager_DeleteCancelsRunningTraversal(t *testing.T) {
	// A page whose single link needs steering, with a long timeout: the
	// traversal parks on the arbiter until Delete cancels it.
	fetcher := &stubFetcher{pages: map[string]*models.Page{
		"https://ex.com": page("https://ex.com", "welcome",
			models.Link{URL: "https://other.com/maybe", Text: "related"}),
	}}
	oracle := mock.NewScriptedOracle(map[string]models.Verdict{
		"https://other.com/maybe": {ShouldCrawl: true, Reasoning: "possibly", Confidence: 0.65},
	})
	s := NewScheduler(fetcher, &memStore{}, NewRouter(oracle, time.Second),
		Thresholds{AutoAdmit: 0.8, AskHuman: 0.5}, 0)
	m := NewManager(s, nil, config.CrawlerConfig{MaxDepth: 2, MaxPages: 5, SteeringTimeout: time.Minute})

	job := m.Create("https://ex.com", "docs only", 2, 5)
	events, err := m.Start(job.ID)
	require.NoError(t, err)

	// Wait for the steering request, then delete the job mid-wait.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, open := <-events:
			if !open {
				t.Fatal("stream ended before steering was requested")
			}
			if ev.Kind() == "steering_needed" {
				require.NoError(t, m.Delete(job.ID))
			}
		case <-deadline:
			t.Fatal("traversal did not end after deletion")
		}
		if _, ok := m.Get(job.ID); !ok {
			break
		}
	}

	// The stream ends without a terminal event.
	for ev := range events {
		assert.NotEqual(t, "completed", ev.Kind())
		assert.NotEqual(t, "error", ev.Kind())
	}
}
