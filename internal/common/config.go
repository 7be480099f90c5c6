package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Mode selects the backend set for one process
const (
	// ModeLive uses cloud LLM APIs and the Postgres/pgvector index
	ModeLive = "live"
	// ModeOffline uses the deterministic generator and the local
	// Badger chunk store
	ModeOffline = "offline"
)

// Config represents the application configuration
type Config struct {
	Mode      string          `toml:"mode" validate:"oneof=live offline"`
	Logging   LoggingConfig   `toml:"logging"`
	Router    RouterConfig    `toml:"router"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Storage   StorageConfig   `toml:"storage"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Claude    ClaudeConfig    `toml:"claude"`
	LLM       LLMConfig       `toml:"llm"`
	Synthesis SynthesisConfig `toml:"synthesis"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                      // "stdout", "file"
}

// RouterConfig controls the routing layer
type RouterConfig struct {
	// UseClassifier enables the LLM classifier fallback when the
	// heuristic pass is inconclusive
	UseClassifier bool `toml:"use_classifier"`
}

// RetrievalConfig controls the retriever adapter
type RetrievalConfig struct {
	TopK     int     `toml:"top_k" validate:"gt=0"`        // Result count per retrieval call
	MinScore float64 `toml:"min_score" validate:"gte=0"`   // Minimum similarity to keep a chunk
	Table    string  `toml:"table" validate:"required"`    // Chunk table name in Postgres
}

// PostgresConfig contains the pgvector index connection settings
type PostgresConfig struct {
	URL string `toml:"url"` // lib/pq connection string
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents the local chunk store configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key
	Model          string  `toml:"model"`           // Generation model (default: "gemini-3-flash-preview")
	EmbeddingModel string  `toml:"embedding_model"` // Embedding model (default: "gemini-embedding-001")
	RateLimit      string  `toml:"rate_limit"`      // Minimum spacing between API calls, duration string
	Temperature    float32 `toml:"temperature"`     // Completion temperature
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "claude-haiku-4-5")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response
	RateLimit   string  `toml:"rate_limit"`  // Minimum spacing between API calls, duration string
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for the AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// SynthesisConfig controls grounded answer generation
type SynthesisConfig struct {
	MaxTokens   int     `toml:"max_tokens" validate:"gt=0"`
	Temperature float32 `toml:"temperature" validate:"gte=0"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for stability; only
// user-facing settings should be exposed in citare.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Mode: ModeOffline,
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Router: RouterConfig{
			UseClassifier: true,
		},
		Retrieval: RetrievalConfig{
			TopK:     6,
			MinScore: 0.05,
			Table:    "transcript_chunks",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/chunks",
			},
		},
		Gemini: GeminiConfig{
			Model:          "gemini-3-flash-preview",
			EmbeddingModel: "gemini-embedding-001",
			RateLimit:      "4s",
			Temperature:    0.2,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   2048,
			RateLimit:   "1s",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Synthesis: SynthesisConfig{
			MaxTokens:   2048,
			Temperature: 0.2,
		},
	}
}

// LoadFromFile loads configuration with precedence defaults -> file ->
// environment. Path may be empty, in which case only defaults and
// environment overrides apply.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides maps CITARE_* environment variables onto the config.
// Environment wins over file values; CLI flags win over both.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("CITARE_MODE"); v != "" {
		config.Mode = v
	}
	if v := os.Getenv("CITARE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CITARE_POSTGRES_URL"); v != "" {
		config.Postgres.URL = v
	}
	if v := os.Getenv("CITARE_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("CITARE_ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("CITARE_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			config.Retrieval.TopK = k
		}
	}
}

// Validate fails fast on malformed or incomplete configuration before
// any external call is made. The error names the specific setting.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Mode == ModeLive {
		if c.Postgres.URL == "" {
			return fmt.Errorf("missing required setting postgres.url (or CITARE_POSTGRES_URL) for live mode")
		}
		switch c.LLM.DefaultProvider {
		case LLMProviderGemini:
			if c.Gemini.APIKey == "" {
				return fmt.Errorf("missing required setting gemini.api_key (or CITARE_GEMINI_API_KEY) for live mode")
			}
		case LLMProviderClaude:
			if c.Claude.APIKey == "" {
				return fmt.Errorf("missing required setting claude.api_key (or CITARE_ANTHROPIC_API_KEY) for live mode")
			}
			// Claude generation still embeds queries through Gemini
			if c.Gemini.APIKey == "" {
				return fmt.Errorf("missing required setting gemini.api_key: query embedding uses Gemini in live mode")
			}
		}
	}

	if c.Mode == ModeOffline && c.Storage.Badger.Path == "" {
		return fmt.Errorf("missing required setting storage.badger.path for offline mode")
	}

	return nil
}
