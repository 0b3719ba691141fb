package client

import (
	"context"
	"time"
)

// Client defines the interface for LLM completion backends.
type Client interface {
	// Complete sends a system + user prompt pair and returns the model's text response.
	Complete(ctx context.Context, system, user string) (string, error)

	// GetModel returns the model name.
	GetModel() string

	// Close closes the client connection.
	Close() error
}

// Options holds common generation settings shared by all backends.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
	HTTPTimeout time.Duration
	// Retry configuration
	MaxRetries int
	RetryDelay time.Duration
}

// withDefaults fills zero-valued fields with sensible defaults.
func (o Options) withDefaults() Options {
	if o.Temperature == 0 {
		o.Temperature = 0.1
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = 8192
	}
	if o.HTTPTimeout == 0 {
		o.HTTPTimeout = 120 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = 1 * time.Second
	}
	return o
}
