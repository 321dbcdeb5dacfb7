package crawler

import (
	"context"
	"log/slog"
	"time"
)

// Decision is a human steering decision for a pending link.
type Decision struct {
	Approve bool   `json:"approve"`
	Link    string `json:"link"`
}

// Arbiter is the per-job hand-off point between the traversal goroutine
// (consumer) and external steering submissions (producer). The channel is
// unbuffered on purpose: a submission succeeds only while the traversal is
// actually waiting on a link, so decisions delivered when nothing is
// pending are discarded rather than queued against a future request.
type Arbiter struct {
	decisions chan Decision
	timeout   time.Duration
}

// NewArbiter creates an arbiter with the given decision timeout.
func NewArbiter(timeout time.Duration) *Arbiter {
	return &Arbiter{
		decisions: make(chan Decision),
		timeout:   timeout,
	}
}

// Submit offers a decision without blocking. Returns false when no link is
// currently awaiting a decision.
func (a *Arbiter) Submit(d Decision) bool {
	select {
	case a.decisions <- d:
		return true
	default:
		return false
	}
}

// Await suspends the calling traversal until a decision for link arrives,
// the timeout elapses, or ctx is cancelled; the latter two count as
// rejection. A decision naming a different link is discarded and the wait
// continues; an empty link field is accepted for the pending link, which
// keeps callers that only ever answer the most recent request working.
func (a *Arbiter) Await(ctx context.Context, link string) bool {
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	for {
		select {
		case d := <-a.decisions:
			if d.Link != "" && d.Link != link {
				slog.Warn("discarding steering decision for non-pending link",
					"pending", link, "decision", d.Link)
				continue
			}
			return d.Approve
		case <-timer.C:
			slog.Warn("steering timeout, rejecting link", "link", link)
			return false
		case <-ctx.Done():
			return false
		}
	}
}
