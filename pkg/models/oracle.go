// Package models contains shared data models used across the IntentCrawl codebase.
package models

import "context"

// Oracle is the core interface that all relevance providers must implement.
// Never call specific AI providers directly — always inject this interface.
type Oracle interface {
	// EvaluateLink decides whether a discovered link is worth crawling
	// given the crawl intent.
	EvaluateLink(ctx context.Context, q LinkQuery) (Verdict, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// LinkQuery is the input to a relevance evaluation.
type LinkQuery struct {
	Intent     string
	URL        string
	AnchorText string
	Domain     string
}

// Verdict is the oracle's recommendation for a single link.
type Verdict struct {
	ShouldCrawl bool    `json:"should_crawl"`
	Reasoning   string  `json:"reasoning"`
	Confidence  float64 `json:"confidence"`
}
