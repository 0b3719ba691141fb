package client

import (
	"context"
	"fmt"

	"github.com/Handit-AI/invoice-copilot/internal/logging"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for the OpenAI Chat Completions API.
type OpenAIClient struct {
	client openai.Client
	opts   Options
	retry  RetryConfig
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(apiKey string, opts Options) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = "gpt-4o"
	}

	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(opts.HTTPTimeout),
	)

	return &OpenAIClient{
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
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	return withRetries(ctx, c.retry, "openai", func() (string, error) {
		messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
		if system != "" {
			messages = append(messages, openai.SystemMessage(system))
		}
		messages = append(messages, openai.UserMessage(user))

		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(c.opts.Model),
			Messages:    messages,
			Temperature: openai.Float(float64(c.opts.Temperature)),
			MaxTokens:   openai.Int(int64(c.opts.MaxTokens)),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", &APIError{StatusCode: 502, Message: "empty completion response"}
		}

		logging.Debug("openai completion",
			"model", c.opts.Model,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens)

		return resp.Choices[0].Message.Content, nil
	})
}

// GetModel returns the model name.
func (c *OpenAIClient) GetModel() string {
	return c.opts.Model
}

// Close closes the client connection.
func (c *OpenAIClient) Close() error {
	return nil
}
