package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "privylens/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	// BaseURL is the OpenAI-compatible API base (e.g. "http://localhost:11434/v1"
	// for Ollama).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates against the embedding API. Ollama ignores it.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the embedding model identifier (e.g. "snowflake-arctic-embed").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// PoolSize bounds the number of concurrent embedding requests issued
	// while ranking a candidate batch (default 4).
	PoolSize int `json:"pool_size" yaml:"pool_size" mapstructure:"pool_size"`
}

// FormulateConfig holds settings for the keyword formulator.
type FormulateConfig struct {
	// BaseURL is the OpenAI-compatible chat API base.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates against the chat API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the chat model identifier (e.g. "llama3").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Temperature is the sampling temperature for keyword generation (default 0.6).
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig holds settings for the search providers.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the number of candidates requested from the arXiv API
	// (default 10). The web search API returns its provider-default page.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// GoogleAPIKey is the Custom Search API key. The GOOGLE_CSE_KEY
	// environment variable takes precedence at call time.
	GoogleAPIKey string `json:"google_api_key,omitempty" yaml:"google_api_key,omitempty" mapstructure:"google_api_key"`

	// GoogleEngineID is the Custom Search engine identifier. The
	// GOOGLE_CSE_ID environment variable takes precedence at call time.
	GoogleEngineID string `json:"google_engine_id,omitempty" yaml:"google_engine_id,omitempty" mapstructure:"google_engine_id"`
}

// HistoryConfig holds settings for the saved-search archive.
type HistoryConfig struct {
	// BaseDir is the directory holding per-provider saved-search files and
	// the catalog database (default "searches").
	BaseDir string `json:"base_dir" yaml:"base_dir" mapstructure:"base_dir"`
}

// ServeConfig holds settings for the web UI server.
type ServeConfig struct {
	// Listen is the address the web UI binds to (default ":8080").
	Listen string `json:"listen" yaml:"listen" mapstructure:"listen"`

	// Env selects the logger profile: "prod" for JSON output, anything else
	// for console output.
	Env string `json:"env" yaml:"env" mapstructure:"env"`

	// LogLevel overrides the log level: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" mapstructure:"log_level"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Formulate FormulateConfig `json:"formulate" yaml:"formulate" mapstructure:"formulate"`
	Search    SearchConfig    `json:"search" yaml:"search" mapstructure:"search"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Serve     ServeConfig     `json:"serve" yaml:"serve" mapstructure:"serve"`
}
