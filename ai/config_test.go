package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		EmbeddingHost:  "http://localhost:11434",
		EmbeddingModel: "nomic-embed-text",
		GeneratorHost:  "https://openrouter.ai/api/v1",
		GeneratorModel: "mistralai/mistral-7b-instruct",
		Temperature:    0.2,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.GeneratorHost)
	assert.Equal(t, "mistralai/mistral-7b-instruct", cfg.GeneratorModel)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 0, cfg.Dimensions)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGeneratorHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.GeneratorHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("custom-embed"),
			WithGeneratorModel("custom-chat"),
			WithAPIKey("sk-test"),
			WithTemperature(0.5),
			WithDimensions(768),
		)

		assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
		assert.Equal(t, "custom-chat", cfg.GeneratorModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, 0.5, cfg.Temperature)
		assert.Equal(t, 768, cfg.Dimensions)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name              string
		embeddingHost     string
		generatorHost     string
		expectedEmbedding string
		expectedGenerator string
	}{
		{
			name:              "already has /v1",
			embeddingHost:     "http://localhost:11434/v1",
			generatorHost:     "https://openrouter.ai/api/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedGenerator: "https://openrouter.ai/api/v1",
		},
		{
			name:              "missing /v1",
			embeddingHost:     "http://localhost:11434",
			generatorHost:     "https://openrouter.ai/api/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedGenerator: "https://openrouter.ai/api/v1",
		},
		{
			name:              "has trailing slash",
			embeddingHost:     "http://localhost:11434/",
			generatorHost:     "https://openrouter.ai/api/v1/",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedGenerator: "https://openrouter.ai/api/v1",
		},
		{
			name:              "empty hosts",
			expectedEmbedding: "",
			expectedGenerator: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				GeneratorHost: tt.generatorHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedGenerator, cfg.GeneratorHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()

		err := cfg.Validate()
		assert.NoError(t, err)

		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing generator host", func(c *Config) { c.GeneratorHost = "" }, "GeneratorHost"},
		{"missing generator model", func(c *Config) { c.GeneratorModel = "" }, "GeneratorModel"},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }, "Temperature"},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, "Temperature"},
		{"negative dimensions", func(c *Config) { c.Dimensions = -1 }, "Dimensions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigValidate_Integration(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	require.NoError(t, cfg.Validate())
}
