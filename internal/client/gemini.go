package client

import (
	"context"
	"fmt"

	"github.com/Handit-AI/invoice-copilot/internal/logging"

	"google.golang.org/genai"
)

// GeminiClient implements Client for the Gemini API.
type GeminiClient struct {
	client *genai.Client
	opts   Options
	retry  RetryConfig
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: c,
		opts:   opts,
		retry: RetryConfig{
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
			MaxDelay:   30 * opts.RetryDelay,
		},
	}, nil
}

// Complete sends a system + user prompt pair and returns the response text.
func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	return withRetries(ctx, c.retry, "gemini", func() (string, error) {
		cfg := &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(c.opts.Temperature),
			MaxOutputTokens: c.opts.MaxTokens,
		}
		if system != "" {
			cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(user), cfg)
		if err != nil {
			return "", err
		}

		text := resp.Text()
		if text == "" {
			return "", &APIError{StatusCode: 502, Message: "empty completion response"}
		}

		logging.Debug("gemini completion", "model", c.opts.Model)
		return text, nil
	})
}

// GetModel returns the model name.
func (c *GeminiClient) GetModel() string {
	return c.opts.Model
}

// Close closes the client connection.
func (c *GeminiClient) Close() error {
	return nil
}
