package vllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/seekerhq/intentcrawl/internal/ai/prompt"
	"github.com/seekerhq/intentcrawl/internal/config"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

// Provider implements models.Oracle against a vLLM server, which exposes
// an OpenAI-compatible chat completions endpoint.
type Provider struct {
	cfg    config.VLLMConfig
	client *http.Client
}

func NewProvider(cfg config.VLLMConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "vllm" }

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Provider) EvaluateLink(ctx context.Context, q models.LinkQuery) (models.Verdict, error) {
	body, err := json.Marshal(completionRequest{
		Model:       p.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt.Build(q)}},
		Temperature: 0.1,
	})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.Verdict{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("calling vllm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Verdict{}, fmt.Errorf("vllm returned status %d: %s", resp.StatusCode, b)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", prompt.ErrMalformed, err)
	}
	if len(out.Choices) == 0 {
		return models.Verdict{}, fmt.Errorf("%w: empty choices", prompt.ErrMalformed)
	}

	return prompt.ParseVerdict(out.Choices[0].Message.Content)
}

var _ models.Oracle = (*Provider)(nil)
