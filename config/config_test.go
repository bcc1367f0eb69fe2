package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvHFToken, EnvHuggingFaceKey, EnvOpenAIKey, EnvKaggleUsername, EnvKaggleKey} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "larder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 10, cfg.Ingestion.BatchSize)
	assert.True(t, cfg.Ingestion.CheckSourceURL)
	assert.True(t, cfg.Sources.MealDB.Enabled)
	assert.False(t, cfg.Sources.FoodCom.Enabled)
	assert.Equal(t, ai.DefaultDimension, cfg.AI.Dimension)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvHFToken, "hf_test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "hf_test", cfg.AI.EmbeddingToken)
	assert.Equal(t, "data", cfg.Sources.DataDir)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
database:
  path: /var/lib/larder
ai:
  dimension: 768
  embeddingModel: sentence-transformers/all-mpnet-base-v2
  timeout: 45s
ingestion:
  batchSize: 25
  rateLimitDelay: 250ms
  checkSourceUrl: false
sources:
  foodcom:
    enabled: true
    files: [RAW_recipes.csv, RAW_interactions.csv]
  web:
    enabled: true
    listings:
      - https://www.example.com/recipes/
    pages: 3
search:
  minSimilarity: 0.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/larder", cfg.Database.Path)
	assert.Equal(t, 768, cfg.AI.Dimension)
	assert.Equal(t, "sentence-transformers/all-mpnet-base-v2", cfg.AI.EmbeddingModel)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 25, cfg.Ingestion.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingestion.RateLimitDelay)
	assert.False(t, cfg.Ingestion.CheckSourceURL)
	assert.True(t, cfg.Sources.FoodCom.Enabled)
	assert.Equal(t, []string{"RAW_recipes.csv", "RAW_interactions.csv"}, cfg.Sources.FoodCom.Files)
	assert.Equal(t, []string{"https://www.example.com/recipes/"}, cfg.Sources.Web.Listings)
	assert.Equal(t, 3, cfg.Sources.Web.Pages)
	assert.InDelta(t, 0.5, cfg.Search.MinSimilarity, 1e-6)

	// Keys absent from the file keep their defaults.
	assert.True(t, cfg.Sources.MealDB.Enabled)
	assert.Equal(t, ai.DefaultHuggingFaceHost, cfg.AI.EmbeddingHost)
	assert.Equal(t, "logs", cfg.Ingestion.RunLogDir)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Ingestion, cfg.Ingestion)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") },
		},
		{
			name: "malformed yaml",
			path: func(t *testing.T) string { return writeConfig(t, "ingestion: [batchSize") },
		},
		{
			name: "unknown key",
			path: func(t *testing.T) string { return writeConfig(t, "ingestion:\n  batchsize: 5\n") },
		},
		{
			name: "bad duration",
			path: func(t *testing.T) string { return writeConfig(t, "ingestion:\n  rateLimitDelay: soon\n") },
		},
		{
			name: "invalid value",
			path: func(t *testing.T) string { return writeConfig(t, "ingestion:\n  batchSize: 0\n") },
		},
		{
			name: "invalid ai section",
			path: func(t *testing.T) string { return writeConfig(t, "ai:\n  embeddingProvider: cohere\n") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "zero batch size", mutate: func(c *Config) { c.Ingestion.BatchSize = 0 }},
		{name: "negative rate limit", mutate: func(c *Config) { c.Ingestion.RateLimitDelay = -time.Second }},
		{name: "negative source pause", mutate: func(c *Config) { c.Ingestion.SourcePause = -1 }},
		{name: "negative max records", mutate: func(c *Config) { c.Ingestion.MaxRecords = -1 }},
		{name: "negative request interval", mutate: func(c *Config) { c.Sources.RequestInterval = -time.Second }},
		{name: "negative cache size", mutate: func(c *Config) { c.AI.CacheSize = -1 }},
		{name: "similarity out of range", mutate: func(c *Config) { c.Search.MinSimilarity = 1.5 }},
		{name: "zero dimension", mutate: func(c *Config) { c.AI.Dimension = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrConfiguration)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name           string
		provider       string
		env            map[string]string
		embeddingToken string
		scorerToken    string
	}{
		{
			name:           "hf token",
			env:            map[string]string{EnvHFToken: "hf_a"},
			embeddingToken: "hf_a",
		},
		{
			name:           "hf token wins over api key",
			env:            map[string]string{EnvHFToken: "hf_a", EnvHuggingFaceKey: "hf_b"},
			embeddingToken: "hf_a",
		},
		{
			name:           "api key fallback",
			env:            map[string]string{EnvHFToken: "", EnvHuggingFaceKey: "hf_b"},
			embeddingToken: "hf_b",
		},
		{
			name:           "openai key scores only with hugging face embeddings",
			env:            map[string]string{EnvOpenAIKey: "sk-1", EnvHFToken: "hf_a"},
			embeddingToken: "hf_a",
			scorerToken:    "sk-1",
		},
		{
			name:           "openai key embeds with openai provider",
			provider:       ai.ProviderOpenAI,
			env:            map[string]string{EnvOpenAIKey: "sk-1", EnvHFToken: "hf_a"},
			embeddingToken: "sk-1",
			scorerToken:    "sk-1",
		},
		{
			name:           "file tokens kept without env",
			env:            map[string]string{},
			embeddingToken: "from-file",
			scorerToken:    "from-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AI.EmbeddingToken = "from-file"
			cfg.AI.ScorerToken = "from-file"
			if tt.provider != "" {
				cfg.AI.EmbeddingProvider = tt.provider
			}

			cfg.ApplyEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})

			assert.Equal(t, tt.embeddingToken, cfg.AI.EmbeddingToken)
			if tt.scorerToken != "" {
				assert.Equal(t, tt.scorerToken, cfg.AI.ScorerToken)
			} else {
				assert.Equal(t, "from-file", cfg.AI.ScorerToken)
			}
		})
	}
}

func TestApplyEnv_Kaggle(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvKaggleUsername: "cook", EnvKaggleKey: "secret"}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	assert.Equal(t, "cook", cfg.Sources.FoodCom.Username)
	assert.Equal(t, "secret", cfg.Sources.FoodCom.Key)
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.AI.EmbeddingToken = "hf_a"
	cfg.AI.Dimension = 768
	cfg.AI.Retries = 5

	aiCfg := cfg.AIConfig()
	assert.Equal(t, "hf_a", aiCfg.EmbeddingToken)
	assert.Equal(t, 768, aiCfg.Dimension)
	assert.Equal(t, 5, aiCfg.Retries)
	assert.Equal(t, cfg.AI.Timeout, aiCfg.Timeout)
	assert.Equal(t, ai.ProviderHuggingFace, aiCfg.EmbeddingProvider)
	require.NoError(t, aiCfg.Validate())
}
