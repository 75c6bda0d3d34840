package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the chat service.
// Environment variables are parsed from the AURORA_ prefix.
type Config struct {
	// Build target selects the high-level deployment shape: local, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Drivers; "auto" derives them from BuildTarget
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	VectorStore string `envconfig:"VECTOR_STORE" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local target)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"aurora.db"`

	// Completion provider
	AnthropicAPIKey     string `envconfig:"ANTHROPIC_API_KEY" default:""`
	CompletionModel     string `envconfig:"COMPLETION_MODEL" default:"claude-sonnet-4-20250514"`
	CompletionMaxTokens int64  `envconfig:"COMPLETION_MAX_TOKENS" default:"2048"`
	SystemPrompt        string `envconfig:"SYSTEM_PROMPT" default:""`
	AssistantName       string `envconfig:"ASSISTANT_NAME" default:"Aurora"`

	// Embedding provider
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"ollama"`
	EmbedModel    string `envconfig:"EMBED_MODEL" default:"mxbai-embed-large"`
	OllamaURL     string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	// Weaviate (vector store for the cloud target)
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"weaviate:8080"`

	// Relay tuning
	HistoryLimit  int `envconfig:"HISTORY_LIMIT" default:"20"`
	MemoryTopK    int `envconfig:"MEMORY_TOP_K" default:"3"`
	RetryMax      int `envconfig:"RETRY_MAX" default:"3"`
	RetryBaseMS   int `envconfig:"RETRY_BASE_MS" default:"1000"`
	DefaultQuota  int `envconfig:"DEFAULT_QUOTA" default:"20"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`

	// DevMode switches the authenticator to the hardcoded local token.
	DevMode bool `envconfig:"DEV_MODE" default:"false"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and VectorStore
// when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB, defaultVec string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
		defaultVec = "chromem"
	case "cloud":
		defaultDB = "postgres"
		defaultVec = "weaviate"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	if c.VectorStore == "" || c.VectorStore == "auto" {
		c.VectorStore = defaultVec
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	allowedVec := map[string]bool{"weaviate": true, "chromem": true}
	if !allowedVec[c.VectorStore] {
		return fmt.Errorf("unsupported VECTOR_STORE: %s", c.VectorStore)
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Variables are prefixed with AURORA_, e.g. AURORA_HTTP_PORT, AURORA_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("AURORA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("vector_store", cfg.VectorStore).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("completion_model", cfg.CompletionModel).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Bool("dev_mode", cfg.DevMode).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
	}

	cfg.HTTPPort = 8080
	cfg.BuildTarget = "local"
	cfg.DBDriver = "auto"
	cfg.VectorStore = "auto"
	cfg.SQLitePath = ":memory:"

	cfg.CompletionModel = "claude-sonnet-4-20250514"
	cfg.CompletionMaxTokens = 1024
	cfg.AssistantName = "Aurora"
	cfg.EmbedProvider = "ollama"
	cfg.EmbedModel = "mxbai-embed-large"
	cfg.OllamaURL = "http://localhost:11434"
	cfg.WeaviateURL = "localhost:8082"

	cfg.HistoryLimit = 20
	cfg.MemoryTopK = 3
	cfg.RetryMax = 3
	cfg.RetryBaseMS = 1
	cfg.DefaultQuota = 20

	cfg.HealthIntervalSeconds = 30
	cfg.HealthProbeTimeoutSeconds = 5
	cfg.DevMode = true

	_ = cfg.ResolveDefaults()
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDevMode reports whether the hardcoded development credential is accepted.
func (c *Config) IsDevMode() bool {
	return c.DevMode && !c.IsProduction()
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
