package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, "http://localhost:11434", cfg.LLM.Host)
	assert.Equal(t, "qwen2.5:7b-instruct", cfg.LLM.Model)
	assert.Equal(t, 0.1, cfg.LLM.ToolTemperature)
	assert.Equal(t, 0.2, cfg.LLM.AnswerTemperature)
	assert.Equal(t, 60, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)

	assert.Equal(t, "ollama", cfg.Embedder.Provider)
	assert.Equal(t, cfg.LLM.Host, cfg.Embedder.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.Model)
	assert.Equal(t, 768, cfg.Embedder.Dimension)

	assert.Equal(t, ".finbot/vectors", cfg.Store.PersistPath)
	assert.Equal(t, "financial_news", cfg.Store.Collection)
	assert.Equal(t, 5, cfg.Retrieval.TopK)

	require.NoError(t, cfg.Validate())
}

func TestSetDefaultsOpenAIEmbedder(t *testing.T) {
	cfg := &Config{}
	cfg.Embedder.Provider = "openai"
	cfg.SetDefaults()

	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	// No implicit host: the OpenAI client uses its own default base URL.
	assert.Empty(t, cfg.Embedder.Host)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Embedder.Provider = "cohere" }, true},
		{"openai without key", func(c *Config) { c.Embedder.Provider = "openai" }, true},
		{"openai with key", func(c *Config) {
			c.Embedder.Provider = "openai"
			c.Embedder.APIKey = "sk-test"
		}, false},
		{"top_k zero", func(c *Config) { c.Retrieval.TopK = -1 }, true},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("TEST_FINBOT_MODEL", "llama3.1:8b")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: ${TEST_FINBOT_MODEL}
  timeout: 30
embedder:
  provider: ollama
  dimension: 1024
retrieval:
  top_k: 7
guard:
  forbidden_patterns:
    - "secret\\s+project"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model, "env var must expand")
	assert.Equal(t, 30, cfg.LLM.Timeout)
	assert.Equal(t, 1024, cfg.Embedder.Dimension)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.Equal(t, []string{`secret\s+project`}, cfg.Guard.ForbiddenPatterns)

	// Unset fields still get defaults.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Host)
	assert.Equal(t, "financial_news", cfg.Store.Collection)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder:\n  provider: cohere\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_FINBOT_HOST", "http://ollama:11434")
	os.Unsetenv("TEST_FINBOT_UNSET")

	tests := []struct {
		in   string
		want interface{}
	}{
		{"${TEST_FINBOT_HOST}", "http://ollama:11434"},
		{"$TEST_FINBOT_HOST", "http://ollama:11434"},
		{"${TEST_FINBOT_UNSET:-fallback}", "fallback"},
		{"${TEST_FINBOT_UNSET:-42}", 42},
		{"plain text", "plain text"},
	}

	for _, tt := range tests {
		got := parseValue(expandEnvVars(tt.in))
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
