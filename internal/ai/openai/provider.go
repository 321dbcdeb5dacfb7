package openai

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

const baseURL = "https://api.openai.com/v1"

// Provider implements models.Oracle using the OpenAI chat completions API.
type Provider struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "openai" }

type completionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
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
		Model:          p.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: prompt.Build(q)}},
		Temperature:    0.1,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.Verdict{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("calling openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Verdict{}, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, b)
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
