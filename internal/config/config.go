package config

import "time"

// Config represents the main application configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Model     ModelConfig     `yaml:"model"`
	Pinecone  PineconeConfig  `yaml:"pinecone"`
	Agent     AgentConfig     `yaml:"agent"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds API-related settings.
type APIConfig struct {
	// Separate keys for each provider
	OpenAIKey string `yaml:"openai_key,omitempty"`
	GeminiKey string `yaml:"gemini_key,omitempty"`
	OllamaKey string `yaml:"ollama_key,omitempty"` // Optional, for remote Ollama servers with auth

	// Ollama server URL (default: http://localhost:11434)
	OllamaBaseURL string `yaml:"ollama_base_url,omitempty"`

	// Active provider: openai, gemini, ollama (default: openai)
	ActiveProvider string `yaml:"active_provider"`

	// Retry configuration for API calls
	Retry RetryConfig `yaml:"retry"`
}

// GetActiveKey returns the API key for the active provider.
func (c *APIConfig) GetActiveKey() string {
	switch c.GetActiveProvider() {
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	case "ollama":
		// Ollama key is optional (local server doesn't need it)
		return c.OllamaKey
	}
	return ""
}

// GetActiveProvider returns the active provider name.
func (c *APIConfig) GetActiveProvider() string {
	if c.ActiveProvider != "" {
		return c.ActiveProvider
	}
	return "openai"
}

// HasProvider checks if a provider has an API key configured.
// Note: Ollama doesn't require an API key for local servers.
func (c *APIConfig) HasProvider(provider string) bool {
	switch provider {
	case "openai":
		return c.OpenAIKey != ""
	case "gemini":
		return c.GeminiKey != ""
	case "ollama":
		return true
	}
	return false
}

// RetryConfig holds retry settings for API calls.
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries"`  // Maximum number of retry attempts (default: 3)
	RetryDelay  time.Duration `yaml:"retry_delay"`  // Initial delay between retries (default: 1s)
	HTTPTimeout time.Duration `yaml:"http_timeout"` // HTTP request timeout (default: 120s)
}

// ModelConfig holds model-related settings.
type ModelConfig struct {
	Name            string  `yaml:"name"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`

	// Response cache for repeated identical prompts
	CacheEnabled bool `yaml:"cache_enabled"`
	CacheSize    int  `yaml:"cache_size"`
}

// PineconeConfig holds vector index settings.
type PineconeConfig struct {
	APIKey    string `yaml:"api_key,omitempty"`
	IndexHost string `yaml:"index_host,omitempty"` // Full index host URL
	IndexName string `yaml:"index_name,omitempty"`
	Namespace string `yaml:"namespace"` // Default: example-namespace
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	MaxIterations    int           `yaml:"max_iterations"`    // Default: 10
	IterationTimeout time.Duration `yaml:"iteration_timeout"` // Default: 120s
	EnableDynamicUI  bool          `yaml:"enable_dynamic_ui"` // Default for requests that omit it
}

// WorkspaceConfig holds workspace sandbox settings.
type WorkspaceConfig struct {
	Root         string `yaml:"root"`          // Workspace root directory (default: ./workspace)
	ProcessedDir string `yaml:"processed_dir"` // Invoice data directory relative to root (default: processed)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"` // Default: :8000
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Optional log directory; empty logs to stderr
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			ActiveProvider: "openai",
			OllamaBaseURL:  "http://localhost:11434",
			Retry: RetryConfig{
				MaxRetries:  3,
				RetryDelay:  1 * time.Second,
				HTTPTimeout: 120 * time.Second,
			},
		},
		Model: ModelConfig{
			Name:            "gpt-4o",
			Temperature:     0.1,
			MaxOutputTokens: 8192,
			CacheEnabled:    false,
			CacheSize:       256,
		},
		Pinecone: PineconeConfig{
			Namespace: "example-namespace",
		},
		Agent: AgentConfig{
			MaxIterations:    10,
			IterationTimeout: 120 * time.Second,
		},
		Workspace: WorkspaceConfig{
			Root:         "workspace",
			ProcessedDir: "processed",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
