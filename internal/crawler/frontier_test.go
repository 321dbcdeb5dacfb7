package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_FIFOOrder(t *testing.T) {
	f := NewFrontier(3, 10)
	f.Enqueue("https://ex.com/a", 0)
	f.Enqueue("https://ex.com/b", 1)
	f.Enqueue("https://ex.com/c", 1)

	url, depth, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://ex.com/a", url)
	assert.Equal(t, 0, depth)

	url, _, ok = f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://ex.com/b", url)

	url, _, ok = f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://ex.com/c", url)

	_, _, ok = f.Pop()
	assert.False(t, ok)
}

func TestFrontier_DropsBeyondDepthBudget(t *testing.T) {
	f := NewFrontier(1, 10)
	f.Enqueue("https://ex.com/deep", 2)

	_, _, ok := f.Pop()
	assert.False(t, ok)
	assert.True(t, f.Exhausted())
}

func TestFrontier_PageBudget(t *testing.T) {
	f := NewFrontier(3, 2)
	f.Enqueue("https://ex.com/a", 0)
	f.Enqueue("https://ex.com/b", 0)
	f.Enqueue("https://ex.com/c", 0)

	_, _, ok := f.Pop()
	require.True(t, ok)
	f.MarkCrawled()
	_, _, ok = f.Pop()
	require.True(t, ok)
	f.MarkCrawled()

	// Budget spent: the queued third entry must never be popped.
	_, _, ok = f.Pop()
	assert.False(t, ok)
	assert.True(t, f.Exhausted())
	assert.Equal(t, 2, f.Pages())
}

func TestFrontier_DedupAtPopTime(t *testing.T) {
	f := NewFrontier(3, 10)
	f.Enqueue("https://ex.com/a", 0)
	f.Enqueue("https://ex.com/a", 1)

	url, _, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://ex.com/a", url)

	// Duplicate queue entry is skipped at pop time.
	_, _, ok = f.Pop()
	assert.False(t, ok)
}

func TestFrontier_ExactStringMatching(t *testing.T) {
	// No URL normalization: trailing slash, fragment, and query are distinct.
	f := NewFrontier(3, 10)
	f.Enqueue("https://ex.com/a", 0)
	f.Enqueue("https://ex.com/a/", 0)
	f.Enqueue("https://ex.com/a#top", 0)
	f.Enqueue("https://ex.com/a?x=1", 0)

	var popped []string
	for {
		url, _, ok := f.Pop()
		if !ok {
			break
		}
		popped = append(popped, url)
	}
	assert.Len(t, popped, 4)
}

func TestFrontier_Seen(t *testing.T) {
	f := NewFrontier(3, 10)
	assert.False(t, f.Seen("https://ex.com/a"))

	f.Enqueue("https://ex.com/a", 0)
	assert.True(t, f.Seen("https://ex.com/a"), "queued URLs count as seen")

	_, _, ok := f.Pop()
	require.True(t, ok)
	assert.True(t, f.Seen("https://ex.com/a"), "popped URLs count as seen")
}
