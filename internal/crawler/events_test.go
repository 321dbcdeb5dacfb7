package crawler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_DeliversInOrder(t *testing.T) {
	em := NewEmitter()
	em.Emit(CrawlingEvent{Type: EventCrawling, URL: "https://ex.com"})
	em.Emit(StoredEvent{Type: EventStored, URL: "https://ex.com", Chunks: 1})
	em.EmitTerminal(CompletedEvent{Type: EventCompleted, TotalPages: 1, TotalChunks: 1})
	em.Close()

	var events []Event
	for ev := range em.Events() {
		events = append(events, ev)
	}
	assert.Equal(t, []string{"crawling", "stored", "completed"}, eventKinds(events))
}

func TestEmitter_DropsIntermediateWhenConsumerLags(t *testing.T) {
	em := NewEmitter()
	for i := 0; i < emitterBuffer+50; i++ {
		em.Emit(CrawlingEvent{Type: EventCrawling, URL: fmt.Sprintf("https://ex.com/%d", i)})
	}
	em.Close()

	var events []Event
	for ev := range em.Events() {
		events = append(events, ev)
	}
	// Everything past the buffer is dropped, earliest events survive.
	require.Len(t, events, emitterBuffer)
	assert.Equal(t, "https://ex.com/0", events[0].(CrawlingEvent).URL)
	assert.Equal(t, fmt.Sprintf("https://ex.com/%d", emitterBuffer-1),
		events[len(events)-1].(CrawlingEvent).URL)
}

func TestEmitter_TerminalEventSurvivesFullBuffer(t *testing.T) {
	em := NewEmitter()
	for i := 0; i < emitterBuffer+50; i++ {
		em.Emit(CrawlingEvent{Type: EventCrawling, URL: fmt.Sprintf("https://ex.com/%d", i)})
	}
	em.EmitTerminal(CompletedEvent{Type: EventCompleted, TotalPages: emitterBuffer + 50})
	em.Close()

	var events []Event
	for ev := range em.Events() {
		events = append(events, ev)
	}
	require.Len(t, events, emitterBuffer+1)

	last := events[len(events)-1]
	require.Equal(t, EventCompleted, last.Kind())
	assert.Equal(t, emitterBuffer+50, last.(CompletedEvent).TotalPages)
}

func TestEmitter_TerminalErrorSurvivesFullBuffer(t *testing.T) {
	em := NewEmitter()
	for i := 0; i < emitterBuffer; i++ {
		em.Emit(StoredEvent{Type: EventStored, URL: "https://ex.com", Chunks: 1})
	}
	em.EmitTerminal(ErrorEvent{Type: EventError, Error: "storing content: connection reset"})
	em.Close()

	var last Event
	for ev := range em.Events() {
		last = ev
	}
	require.NotNil(t, last)
	assert.Equal(t, EventError, last.Kind())
}
