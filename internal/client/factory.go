package client

import (
	"context"
	"fmt"

	"github.com/Handit-AI/invoice-copilot/internal/config"
)

// New creates a completion client for the configured provider.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	opts := Options{
		Model:       cfg.Model.Name,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxOutputTokens,
		HTTPTimeout: cfg.API.Retry.HTTPTimeout,
		MaxRetries:  cfg.API.Retry.MaxRetries,
		RetryDelay:  cfg.API.Retry.RetryDelay,
	}

	var (
		c   Client
		err error
	)
	switch provider := cfg.API.GetActiveProvider(); provider {
	case "openai":
		c, err = NewOpenAIClient(cfg.API.OpenAIKey, opts)
	case "gemini":
		c, err = NewGeminiClient(ctx, cfg.API.GeminiKey, opts)
	case "ollama":
		c, err = NewOllamaClient(cfg.API.OllamaBaseURL, cfg.API.OllamaKey, opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Model.CacheEnabled {
		c, err = NewCachedClient(c, cfg.Model.CacheSize)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}
