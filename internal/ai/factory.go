// Package ai provides the relevance oracle: given a discovered link and the
// crawl intent, a provider returns a crawl/skip recommendation with a
// confidence score and free-text reasoning.
package ai

import (
	"fmt"

	"github.com/seekerhq/intentcrawl/internal/ai/anthropic"
	"github.com/seekerhq/intentcrawl/internal/ai/ollama"
	"github.com/seekerhq/intentcrawl/internal/ai/openai"
	"github.com/seekerhq/intentcrawl/internal/ai/vllm"
	"github.com/seekerhq/intentcrawl/internal/config"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

// NewOracle constructs the appropriate relevance oracle based on config.
// Called once at server startup.
func NewOracle(cfg config.AIConfig) (models.Oracle, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, vllm, openai, anthropic", cfg.Provider)
	}
}
