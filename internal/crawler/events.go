package crawler

import "log/slog"

// Event is one entry in a job's ordered progress stream. Each concrete
// event carries a "type" discriminant in its JSON form, matching the SSE
// event name.
type Event interface {
	Kind() string
}

const (
	EventCrawling       = "crawling"
	EventStored         = "stored"
	EventSteeringNeeded = "steering_needed"
	EventDiscovered     = "discovered"
	EventCompleted      = "completed"
	EventError          = "error"
)

type CrawlingEvent struct {
	Type     string  `json:"type"`
	URL      string  `json:"url"`
	Progress float64 `json:"progress"`
}

func (CrawlingEvent) Kind() string { return EventCrawling }

type StoredEvent struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Chunks int    `json:"chunks"`
}

func (StoredEvent) Kind() string { return EventStored }

type SteeringNeededEvent struct {
	Type       string  `json:"type"`
	Link       string  `json:"link"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	Waiting    bool    `json:"waiting"`
}

func (SteeringNeededEvent) Kind() string { return EventSteeringNeeded }

type DiscoveredEvent struct {
	Type  string   `json:"type"`
	Links []string `json:"links"`
	Count int      `json:"count"`
}

func (DiscoveredEvent) Kind() string { return EventDiscovered }

type CompletedEvent struct {
	Type            string  `json:"type"`
	TotalPages      int     `json:"total_pages"`
	TotalChunks     int     `json:"total_chunks"`
	DurationSeconds float64 `json:"duration"`
}

func (CompletedEvent) Kind() string { return EventCompleted }

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (ErrorEvent) Kind() string { return EventError }

// emitterBuffer bounds how far the traversal can run ahead of a slow or
// absent consumer before intermediate events start being dropped.
const emitterBuffer = 256

// Emitter is the single-producer event channel for one job. Emit never
// blocks: the traversal favors completing its storage side-effects over
// consumer responsiveness, so when the buffer fills, intermediate events
// are dropped. The channel carries one extra slot that Emit never fills,
// so the terminal event always fits no matter how far behind the consumer
// is. Only the traversal goroutine calls Emit, EmitTerminal, and Close.
type Emitter struct {
	ch chan Event
}

func NewEmitter() *Emitter {
	return &Emitter{ch: make(chan Event, emitterBuffer+1)}
}

// Events returns the consumer side of the stream. The channel is closed
// after the terminal event.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Emit appends one event to the stream, dropping it when the consumer has
// fallen more than emitterBuffer events behind. The last channel slot is
// left free for EmitTerminal.
func (e *Emitter) Emit(ev Event) {
	if len(e.ch) >= emitterBuffer {
		slog.Warn("event buffer full, dropping event", "kind", ev.Kind())
		return
	}
	e.ch <- ev
}

// EmitTerminal appends the stream's final completed or error event. It uses
// the reserved channel slot, so delivery is guaranteed: with a single
// producer and at most one terminal event per job, the slot is always free.
func (e *Emitter) EmitTerminal(ev Event) {
	e.ch <- ev
}

// Close ends the stream. No events may be emitted afterwards.
func (e *Emitter) Close() {
	close(e.ch)
}
