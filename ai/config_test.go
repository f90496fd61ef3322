package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434", cfg.GenerativeHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "llama3", cfg.SegmenterModel)
	assert.Equal(t, "llama3.2", cfg.AnswerModel)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 10*time.Minute, cfg.GenerateTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with shared host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://gpu:11434/"))
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "http://gpu:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://gpu:11434", cfg.GenerativeHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGenerativeHost("http://gen:11434/v1"),
		)
		cfg.Normalize()

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://gen:11434", cfg.GenerativeHost)
	})

	t.Run("with custom models and timeouts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("mxbai-embed-large"),
			WithSegmenterModel("qwen2.5:7b"),
			WithAnswerModel("llama3.1"),
			WithProbeTimeout(time.Second),
			WithGenerateTimeout(time.Minute),
		)

		assert.Equal(t, "mxbai-embed-large", cfg.EmbeddingModel)
		assert.Equal(t, "qwen2.5:7b", cfg.SegmenterModel)
		assert.Equal(t, "llama3.1", cfg.AnswerModel)
		assert.Equal(t, time.Second, cfg.ProbeTimeout)
		assert.Equal(t, time.Minute, cfg.GenerateTimeout)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing generative host", func(c *Config) { c.GenerativeHost = "" }, "GenerativeHost"},
		{"missing segmenter model", func(c *Config) { c.SegmenterModel = "" }, "SegmenterModel"},
		{"missing answer model", func(c *Config) { c.AnswerModel = "" }, "AnswerModel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNormalize_RestoresTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbeTimeout = 0
	cfg.GenerateTimeout = -1
	cfg.Normalize()

	assert.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	assert.Equal(t, DefaultGenerateTimeout, cfg.GenerateTimeout)
}
