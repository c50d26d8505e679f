package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/sift/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Equal(t, 8, cfg.Search.TopK)
	assert.Equal(t, 4, cfg.Search.K)
	assert.Equal(t, 0.7, cfg.Search.Lambda)
	assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)
	assert.Equal(t, 1200, cfg.Answer.ContextBudget)
	assert.Equal(t, 1800, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 200, cfg.Ingestion.ChunkOverlap)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Search.TopK)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
storage:
  path: /var/lib/sift
search:
  top_k: 20
  lambda: 0.5
ai:
  dimensions: 768
  embedding_host: http://ollama:11434
ingestion:
  retry_delay: 2s
  rate_limit: 4
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sift", cfg.Storage.Path)
	assert.Equal(t, 20, cfg.Search.TopK)
	assert.Equal(t, 4, cfg.Search.K, "absent keys keep defaults")
	assert.Equal(t, 0.5, cfg.Search.Lambda)
	assert.Equal(t, 768, cfg.AI.Dimensions)
	assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)
	assert.Equal(t, 2*time.Second, cfg.Ingestion.RetryDelay)
	assert.Equal(t, 4.0, cfg.Ingestion.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Equal(t, "http://ollama:11434/v1", cfg.AIConfig().EmbeddingHost)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "search: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "search:\n  lambda: 1.5\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, search.ErrInvalidParams)
	})
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "search:\n  top_k: 20\n")
	t.Setenv("TOP_K", "12")
	t.Setenv("RERANK_K", "6")
	t.Setenv("MMR_LAMBDA", "0.3")
	t.Setenv("SIFT_DB", "/tmp/sift-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Search.TopK)
	assert.Equal(t, 6, cfg.Search.K)
	assert.Equal(t, 0.3, cfg.Search.Lambda)
	assert.Equal(t, "/tmp/sift-env", cfg.Storage.Path)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := NewConfig()
	cfg.applyEnvOverrides(envMap(map[string]string{
		"EMBED_DIM":          "768",
		"OLLAMA_HOST":        "http://gpu-box:11434",
		"EMBED_MODEL":        "mxbai-embed-large",
		"OPENROUTER_API_KEY": "sk-or-test",
		"OPENROUTER_MODEL":   "meta-llama/llama-3-8b-instruct",
		"SIFT_LOG_LEVEL":     "warn",
		"TOP_K":              "not-a-number",
		"MMR_LAMBDA":         "high",
	}))

	assert.Equal(t, 768, cfg.AI.Dimensions)
	assert.Equal(t, "http://gpu-box:11434", cfg.AI.EmbeddingHost)
	assert.Equal(t, "mxbai-embed-large", cfg.AI.EmbeddingModel)
	assert.Equal(t, "sk-or-test", cfg.AI.APIKey)
	assert.Equal(t, "meta-llama/llama-3-8b-instruct", cfg.AI.GeneratorModel)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Search.TopK, "invalid values are ignored")
	assert.Equal(t, 0.7, cfg.Search.Lambda)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty storage path", func(c *Config) { c.Storage.Path = "" }},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }},
		{"zero k", func(c *Config) { c.Search.K = 0 }},
		{"negative dimensions", func(c *Config) { c.AI.Dimensions = -1 }},
		{"missing embedding model", func(c *Config) { c.AI.EmbeddingModel = "" }},
		{"negative cache size", func(c *Config) { c.AI.QueryCacheSize = -1 }},
		{"overlap too large", func(c *Config) { c.Ingestion.ChunkOverlap = c.Ingestion.ChunkSize }},
		{"zero attempts", func(c *Config) { c.Ingestion.MaxAttempts = 0 }},
		{"negative pool", func(c *Config) { c.Ingestion.PoolSize = -2 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("in memory needs no path", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Storage.Path = ""
		cfg.Storage.InMemory = true
		assert.NoError(t, cfg.Validate())
	})
}

func TestConversions(t *testing.T) {
	cfg := NewConfig()
	cfg.AI.Dimensions = 384
	cfg.AI.APIKey = "sk"

	sc := cfg.SearchConfig()
	assert.Equal(t, search.Config{Dimensions: 384, TopK: 8, K: 4, Lambda: 0.7}, sc)

	ac := cfg.AIConfig()
	assert.Equal(t, 384, ac.Dimensions)
	assert.Equal(t, "sk", ac.APIKey)

	opts := cfg.IngestionOptions()
	assert.Len(t, opts, 3)
	cfg.Ingestion.PoolSize = 4
	assert.Len(t, cfg.IngestionOptions(), 4)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.TopK = 11
	cfg.Ingestion.RetryDelay = 750 * time.Millisecond

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 11, loaded.Search.TopK)
	assert.Equal(t, 750*time.Millisecond, loaded.Ingestion.RetryDelay)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("trace")
	assert.Error(t, err)
}
