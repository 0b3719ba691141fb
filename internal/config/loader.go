package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			// Config file is optional, don't fail if it doesn't exist
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	loadFromEnv(cfg)

	return cfg, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() string {
	if p := os.Getenv("COPILOT_CONFIG"); p != "" {
		return p
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "invoice-copilot", "config.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "invoice-copilot", "config.yaml")
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Expand environment variables in the config file
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.API.OpenAIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.API.GeminiKey = key
	}
	if key := os.Getenv("OLLAMA_API_KEY"); key != "" {
		cfg.API.OllamaKey = key
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		cfg.API.OllamaBaseURL = url
	}
	if provider := os.Getenv("COPILOT_PROVIDER"); provider != "" {
		cfg.API.ActiveProvider = provider
	}
	if model := os.Getenv("COPILOT_MODEL"); model != "" {
		cfg.Model.Name = model
	}
	if key := os.Getenv("PINECONE_API_KEY"); key != "" {
		cfg.Pinecone.APIKey = key
	}
	if host := os.Getenv("PINECONE_INDEX_HOST"); host != "" {
		cfg.Pinecone.IndexHost = host
	}
	if name := os.Getenv("PINECONE_INDEX_NAME"); name != "" {
		cfg.Pinecone.IndexName = name
	}
	if ws := os.Getenv("COPILOT_WORKSPACE"); ws != "" {
		cfg.Workspace.Root = ws
	}
}

// ConfigError is a configuration validation error.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrMissingAuth ConfigError = "missing authentication: set OPENAI_API_KEY (or GEMINI_API_KEY with the gemini provider)"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	provider := c.API.GetActiveProvider()
	if provider != "ollama" && c.API.GetActiveKey() == "" {
		return ErrMissingAuth
	}
	if c.Agent.MaxIterations <= 0 {
		return ConfigError("agent.max_iterations must be positive")
	}
	if c.Workspace.Root == "" {
		return ConfigError("workspace.root must be set")
	}
	return nil
}
