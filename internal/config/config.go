package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the keyboard AI backend.
type Config struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Gemini    GeminiConfig
	GPT5      GPT5Config
	Emoji     EmojiConfig
	Retry     RetryConfig
	Context   ContextConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port      string `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
}

// StorageConfig selects the conversation persistence backend.
type StorageConfig struct {
	// Backend is "redis" (key-value blobs, the default) or "postgres".
	Backend string `envconfig:"STORAGE_BACKEND" default:"redis"`
}

// RedisConfig holds Redis configuration. Redis always backs preferences,
// usage counters and the emoji cache, regardless of the storage backend.
type RedisConfig struct {
	URI string `envconfig:"REDIS_URI" required:"true"`
}

// DatabaseConfig holds PostgreSQL configuration, required only when the
// postgres storage backend is selected.
type DatabaseConfig struct {
	DSN string `envconfig:"DATABASE_DSN"`
}

// GeminiConfig holds the Google-style provider configuration.
type GeminiConfig struct {
	APIKey     string   `envconfig:"GEMINI_API_KEY" required:"true"`
	BackupKeys []string `envconfig:"GEMINI_BACKUP_API_KEYS"`
	Models     []string `envconfig:"GEMINI_MODELS"`
}

// GPT5Config holds the OpenAI-chat-style provider configuration.
type GPT5Config struct {
	APIKey     string   `envconfig:"GPT5_API_KEY"`
	BackupKeys []string `envconfig:"GPT5_BACKUP_API_KEYS"`
	BaseURL    string   `envconfig:"GPT5_BASE_URL"`
	Models     []string `envconfig:"GPT5_MODELS"`
}

// EmojiConfig holds the emoji metadata API configuration.
type EmojiConfig struct {
	AccessKey string        `envconfig:"EMOJI_ACCESS_KEY"`
	BaseURL   string        `envconfig:"EMOJI_BASE_URL" default:"https://emoji-api.com"`
	CacheTTL  time.Duration `envconfig:"EMOJI_CACHE_TTL" default:"24h"`
}

// RetryConfig bounds the router's per-candidate retry loop.
type RetryConfig struct {
	MaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	Backoff     time.Duration `envconfig:"RETRY_BACKOFF" default:"1s"`
}

// ContextConfig tunes the chat context window and summarization trigger.
type ContextConfig struct {
	// WindowSize is the number of recent TEXT messages sent as context.
	WindowSize int `envconfig:"CONTEXT_WINDOW_SIZE" default:"10"`
	// SummarizeTrigger is the message count past which the conversation
	// is summarized once.
	SummarizeTrigger int `envconfig:"CONTEXT_SUMMARIZE_TRIGGER" default:"19"`
	// SummaryHead is how many of the oldest TEXT messages feed the
	// summary. Early context is captured here; recent context is already
	// in the raw window.
	SummaryHead int `envconfig:"CONTEXT_SUMMARY_HEAD" default:"15"`
	// SummaryMinMessages is the minimum TEXT message count worth
	// summarizing at all.
	SummaryMinMessages int `envconfig:"CONTEXT_SUMMARY_MIN_MESSAGES" default:"5"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration for logical errors beyond required fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "redis":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Context.WindowSize < 1 || c.Context.SummarizeTrigger < 1 {
		return fmt.Errorf("context window and summarize trigger must be positive")
	}
	return nil
}
