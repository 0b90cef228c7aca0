// Package config defines application configuration for the finbot agent.
//
// Configuration is loaded once at startup and treated as immutable for the
// process lifetime. Every component receives its config by value or pointer
// at construction time; nothing mutates it per turn.
package config

import (
	"fmt"
)

// Config is the root configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Embedder  EmbedderConfig  `yaml:"embedder" mapstructure:"embedder"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Guard     GuardConfig     `yaml:"guard" mapstructure:"guard"`
}

// LLMConfig configures the reasoning service (Ollama chat API).
type LLMConfig struct {
	// Host is the Ollama API base URL.
	Host string `yaml:"host" mapstructure:"host"`

	// Model name as known to Ollama (e.g. "qwen2.5:7b-instruct").
	Model string `yaml:"model" mapstructure:"model"`

	// ToolTemperature is used for tool selection, where near-deterministic
	// output is wanted.
	ToolTemperature float64 `yaml:"tool_temperature" mapstructure:"tool_temperature"`

	// AnswerTemperature is used for final answer generation.
	AnswerTemperature float64 `yaml:"answer_temperature" mapstructure:"answer_temperature"`

	// Timeout in seconds for a single request.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on transient failures.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// EmbedderConfig configures the embedding service.
type EmbedderConfig struct {
	// Provider type: "ollama" or "openai".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Host is the service base URL (Ollama host or OpenAI-compatible base URL).
	Host string `yaml:"host" mapstructure:"host"`

	// Model is the embedding model identifier.
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for authentication (openai provider). Supports ${VAR} expansion.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Dimension of the embedding vectors.
	Dimension int `yaml:"dimension" mapstructure:"dimension"`

	// Timeout in seconds for a single request.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on transient failures.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	// PersistPath is the directory for the persisted vector store.
	// Empty means in-memory only.
	PersistPath string `yaml:"persist_path" mapstructure:"persist_path"`

	// Compress enables gzip compression for persisted vectors.
	Compress bool `yaml:"compress" mapstructure:"compress"`

	// Collection is the corpus collection name.
	Collection string `yaml:"collection" mapstructure:"collection"`

	// CSVPath is the corpus source file for ingestion.
	CSVPath string `yaml:"csv_path" mapstructure:"csv_path"`
}

// RetrievalConfig configures search behavior.
type RetrievalConfig struct {
	// TopK is the default number of documents returned per search.
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// GuardConfig extends the built-in guard policy.
// All lists are additive; the built-in policy always applies.
type GuardConfig struct {
	// ForbiddenPatterns are extra case-insensitive regexes for disallowed
	// input intents.
	ForbiddenPatterns []string `yaml:"forbidden_patterns" mapstructure:"forbidden_patterns"`

	// InjectionPatterns are extra case-insensitive regexes for
	// prompt-injection attempts.
	InjectionPatterns []string `yaml:"injection_patterns" mapstructure:"injection_patterns"`

	// ProtectedStrings are literals redacted from outbound text.
	ProtectedStrings []string `yaml:"protected_strings" mapstructure:"protected_strings"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.LLM.Host == "" {
		c.LLM.Host = "http://localhost:11434"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen2.5:7b-instruct"
	}
	if c.LLM.ToolTemperature == 0 {
		c.LLM.ToolTemperature = 0.1
	}
	if c.LLM.AnswerTemperature == 0 {
		c.LLM.AnswerTemperature = 0.2
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 3
	}

	if c.Embedder.Provider == "" {
		c.Embedder.Provider = "ollama"
	}
	if c.Embedder.Host == "" && c.Embedder.Provider == "ollama" {
		c.Embedder.Host = c.LLM.Host
	}
	if c.Embedder.Model == "" {
		switch c.Embedder.Provider {
		case "openai":
			c.Embedder.Model = "text-embedding-3-small"
		default:
			c.Embedder.Model = "nomic-embed-text"
		}
	}
	if c.Embedder.Dimension == 0 {
		c.Embedder.Dimension = 768
	}
	if c.Embedder.Timeout == 0 {
		c.Embedder.Timeout = 30
	}
	if c.Embedder.MaxRetries == 0 {
		c.Embedder.MaxRetries = 3
	}

	if c.Store.PersistPath == "" {
		c.Store.PersistPath = ".finbot/vectors"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "financial_news"
	}
	if c.Store.CSVPath == "" {
		c.Store.CSVPath = "data/financial_news.csv"
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
}

// Validate checks the configuration. Only unrecoverable startup conditions
// fail validation; everything else gets a default.
func (c *Config) Validate() error {
	switch c.Embedder.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown embedder provider %q (valid: ollama, openai)", c.Embedder.Provider)
	}

	if c.Embedder.Provider == "openai" && c.Embedder.APIKey == "" {
		return fmt.Errorf("embedder provider %q requires api_key", c.Embedder.Provider)
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top_k must be >= 1, got %d", c.Retrieval.TopK)
	}

	if c.LLM.Timeout < 1 || c.Embedder.Timeout < 1 {
		return fmt.Errorf("timeouts must be >= 1 second")
	}

	return nil
}
