package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/logging"

	"github.com/ollama/ollama/api"
)

// OllamaClient implements Client for a local or remote Ollama server.
type OllamaClient struct {
	client *api.Client
	opts   Options
	retry  RetryConfig
}

// authTransport adds Authorization header to HTTP requests.
type authTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(reqClone)
}

// NewOllamaClient creates a new Ollama API client.
func NewOllamaClient(rawBaseURL, apiKey string, opts Options) (*OllamaClient, error) {
	opts = opts.withDefaults()
	if opts.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if rawBaseURL == "" {
		rawBaseURL = "http://localhost:11434"
	}

	baseURL, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	// Warn if using unencrypted HTTP to a non-localhost host
	if baseURL.Scheme == "http" {
		host := baseURL.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host",
				"host", host,
				"recommendation", "use HTTPS for remote Ollama servers")
		}
	}

	httpClient := &http.Client{Timeout: opts.HTTPTimeout}
	if apiKey != "" {
		// Add Authorization header for remote Ollama servers with auth
		httpClient.Transport = &authTransport{
			base:   http.DefaultTransport,
			apiKey: apiKey,
		}
	}

	return &OllamaClient{
		client: api.NewClient(baseURL, httpClient),
		opts:   opts,
		retry: RetryConfig{
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
			MaxDelay:   30 * opts.RetryDelay,
		},
	}, nil
}

// Complete sends a system + user prompt pair and returns the response text.
func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	return withRetries(ctx, c.retry, "ollama", func() (string, error) {
		messages := make([]api.Message, 0, 2)
		if system != "" {
			messages = append(messages, api.Message{Role: "system", Content: system})
		}
		messages = append(messages, api.Message{Role: "user", Content: user})

		req := &api.ChatRequest{
			Model:    c.opts.Model,
			Messages: messages,
			Stream:   Ptr(false),
			Options: map[string]interface{}{
				"temperature": c.opts.Temperature,
				"num_predict": c.opts.MaxTokens,
			},
		}

		var sb strings.Builder
		err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			sb.WriteString(resp.Message.Content)
			return nil
		})
		if err != nil {
			return "", err
		}
		if sb.Len() == 0 {
			return "", &APIError{StatusCode: 502, Message: "empty completion response"}
		}

		logging.Debug("ollama completion", "model", c.opts.Model)
		return sb.String(), nil
	})
}

// GetModel returns the model name.
func (c *OllamaClient) GetModel() string {
	return c.opts.Model
}

// Close closes the client connection.
func (c *OllamaClient) Close() error {
	return nil
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}
