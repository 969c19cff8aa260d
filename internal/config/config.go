package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3002"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Zep graph/thread store
	Zep ZepConfig

	// LLM configuration (chat completions)
	LLM LLMConfig

	// Document ingestion
	Ingest IngestConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"300s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"300s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ZepConfig holds the connection settings for the external graph/thread
// store. With no API key, all graph-aware behavior is bypassed and the
// service runs model-only.
type ZepConfig struct {
	APIKey  string `env:"ZEP_API_KEY"`
	BaseURL string `env:"ZEP_API_BASE_URL" envDefault:"https://api.getzep.com/api/v2"`

	// Default write target when a request names neither a user nor a graph
	UserID  string `env:"ZEP_USER_ID" envDefault:"demo-user"`
	GraphID string `env:"ZEP_GRAPH_ID"`

	Timeout           time.Duration `env:"ZEP_TIMEOUT" envDefault:"30s"`
	RequestsPerMinute int           `env:"ZEP_REQUESTS_PER_MINUTE" envDefault:"300"`
	SearchLimit       int           `env:"ZEP_SEARCH_LIMIT" envDefault:"20"`
}

// IsEnabled returns true if the graph store credential is present
func (z *ZepConfig) IsEnabled() bool {
	return z.APIKey != ""
}

// LLMConfig holds chat completion configuration
type LLMConfig struct {
	// Google API Key for the Gemini API
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	// Chat model name
	Model string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`

	// Max output tokens for chat completions
	MaxOutputTokens int `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"8192"`

	// Temperature for chat completions (0.0-1.0)
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	// Request timeout
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	// Disable LLM network calls (for testing)
	NetworkDisabled bool `env:"LLM_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if the LLM is configured
func (l *LLMConfig) IsEnabled() bool {
	if l.NetworkDisabled {
		return false
	}
	return l.GoogleAPIKey != ""
}

// IngestConfig holds document ingestion settings
type IngestConfig struct {
	// ChunkSize is the maximum characters per ingested episode
	ChunkSize int `env:"INGEST_CHUNK_SIZE" envDefault:"8000"`

	// MaxFileBytes is the per-file upload size limit
	MaxFileBytes int64 `env:"INGEST_MAX_FILE_BYTES" envDefault:"10485760"`
}

// Validate checks configuration invariants that env defaults cannot express
func (c *Config) Validate() error {
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("INGEST_CHUNK_SIZE must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Zep.SearchLimit <= 0 {
		return fmt.Errorf("ZEP_SEARCH_LIMIT must be positive, got %d", c.Zep.SearchLimit)
	}
	return nil
}

// NewConfig parses configuration from the environment
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.Bool("graph_enabled", cfg.Zep.IsEnabled()),
		slog.Bool("llm_enabled", cfg.LLM.IsEnabled()),
	)

	return cfg, nil
}
