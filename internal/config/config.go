package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the IntentCrawl server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Crawler  CrawlerConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	VLLM             VLLMConfig
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
}

type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// CrawlerConfig holds traversal budgets, steering, and fetch settings.
// The tier thresholds are configuration, not literals, so operators can
// tune steering aggressiveness without touching traversal logic.
type CrawlerConfig struct {
	MaxDepth           int
	MaxPages           int
	Delay              time.Duration
	SteeringTimeout    time.Duration
	AutoAdmitThreshold float64
	AskHumanThreshold  float64
	UserAgent          string
	RespectRobots      bool
	FetchTimeout       time.Duration
	MaxBodySize        int64
}

// AuthConfig holds optional API-key auth. When no hashes are configured,
// the auth middleware is disabled.
type AuthConfig struct {
	KeyHashes          []string
	RateLimitPerMinute int
}

var validProviders = map[string]bool{
	"ollama":    true,
	"vllm":      true,
	"openai":    true,
	"anthropic": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CRAWLER_PORT", 8080),
			Env:  envString("CRAWLER_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Ollama: OllamaConfig{
				BaseURL:     envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:       envString("OLLAMA_MODEL", "llama3"),
				Temperature: envFloat("OLLAMA_TEMPERATURE", 0.1),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_MODEL", "gpt-4"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
		},
		Crawler: CrawlerConfig{
			MaxDepth:           envInt("CRAWL_MAX_DEPTH", 3),
			MaxPages:           envInt("CRAWL_MAX_PAGES", 50),
			Delay:              envDuration("CRAWL_DELAY", 1*time.Second),
			SteeringTimeout:    envDuration("CRAWL_STEERING_TIMEOUT", 60*time.Second),
			AutoAdmitThreshold: envFloat("CRAWL_AUTO_ADMIT_THRESHOLD", 0.8),
			AskHumanThreshold:  envFloat("CRAWL_ASK_HUMAN_THRESHOLD", 0.5),
			UserAgent:          envString("CRAWL_USER_AGENT", "IntentCrawl/1.0 (+https://github.com/seekerhq/intentcrawl)"),
			RespectRobots:      envBool("CRAWL_RESPECT_ROBOTS", true),
			FetchTimeout:       envDuration("CRAWL_FETCH_TIMEOUT", 30*time.Second),
			MaxBodySize:        int64(envInt("CRAWL_MAX_BODY_BYTES", 10*1024*1024)),
		},
		Auth: AuthConfig{
			KeyHashes:          envList("API_KEY_HASHES"),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai, anthropic; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}

	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("CRAWL_MAX_DEPTH must be >= 0, got %d", c.Crawler.MaxDepth)
	}
	if c.Crawler.MaxPages < 1 {
		return fmt.Errorf("CRAWL_MAX_PAGES must be >= 1, got %d", c.Crawler.MaxPages)
	}
	if c.Crawler.AutoAdmitThreshold <= c.Crawler.AskHumanThreshold {
		return fmt.Errorf("CRAWL_AUTO_ADMIT_THRESHOLD (%v) must be greater than CRAWL_ASK_HUMAN_THRESHOLD (%v)",
			c.Crawler.AutoAdmitThreshold, c.Crawler.AskHumanThreshold)
	}
	if c.Crawler.AutoAdmitThreshold > 1.0 || c.Crawler.AskHumanThreshold < 0 {
		return fmt.Errorf("tier thresholds must fall within [0.0, 1.0]")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
