package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, ModeOffline, config.Mode)
	assert.Equal(t, "info", config.Logging.Level)
	assert.True(t, config.Router.UseClassifier)
	assert.Equal(t, 6, config.Retrieval.TopK)
	assert.Equal(t, 0.05, config.Retrieval.MinScore)
	assert.Equal(t, "transcript_chunks", config.Retrieval.Table)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)

	require.NoError(t, config.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citare.toml")
	content := `
mode = "live"

[retrieval]
top_k = 10
min_score = 0.2
table = "transcript_chunks"

[postgres]
url = "postgres://localhost/citare?sslmode=disable"

[gemini]
api_key = "test-key"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ModeLive, config.Mode)
	assert.Equal(t, 10, config.Retrieval.TopK)
	assert.Equal(t, 0.2, config.Retrieval.MinScore)
	// Untouched settings keep their defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "gemini-embedding-001", config.Gemini.EmbeddingModel)

	require.NoError(t, config.Validate())
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("CITARE_MODE", "live")
	t.Setenv("CITARE_POSTGRES_URL", "postgres://env-host/citare")
	t.Setenv("CITARE_GEMINI_API_KEY", "env-key")
	t.Setenv("CITARE_TOP_K", "3")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, ModeLive, config.Mode)
	assert.Equal(t, "postgres://env-host/citare", config.Postgres.URL)
	assert.Equal(t, "env-key", config.Gemini.APIKey)
	assert.Equal(t, 3, config.Retrieval.TopK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "offline defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "unknown mode",
			mutate: func(c *Config) {
				c.Mode = "hybrid"
			},
			wantErr: "invalid configuration",
		},
		{
			name: "live mode requires postgres url",
			mutate: func(c *Config) {
				c.Mode = ModeLive
				c.Gemini.APIKey = "key"
			},
			wantErr: "postgres.url",
		},
		{
			name: "live mode requires gemini api key",
			mutate: func(c *Config) {
				c.Mode = ModeLive
				c.Postgres.URL = "postgres://localhost/citare"
			},
			wantErr: "gemini.api_key",
		},
		{
			name: "claude provider still needs embedding key",
			mutate: func(c *Config) {
				c.Mode = ModeLive
				c.Postgres.URL = "postgres://localhost/citare"
				c.LLM.DefaultProvider = LLMProviderClaude
				c.Claude.APIKey = "key"
			},
			wantErr: "embedding uses Gemini",
		},
		{
			name: "offline mode requires store path",
			mutate: func(c *Config) {
				c.Storage.Badger.Path = ""
			},
			wantErr: "storage.badger.path",
		},
		{
			name: "top_k must be positive",
			mutate: func(c *Config) {
				c.Retrieval.TopK = 0
			},
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
