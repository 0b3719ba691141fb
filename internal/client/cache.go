package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Handit-AI/invoice-copilot/internal/logging"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedClient wraps a Client with an LRU cache keyed on the prompt pair.
// Useful for deterministic low-temperature prompts that repeat across requests.
type CachedClient struct {
	inner Client
	cache *lru.Cache[string, string]
}

// NewCachedClient creates a caching wrapper around the given client.
func NewCachedClient(inner Client, size int) (*CachedClient, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &CachedClient{inner: inner, cache: cache}, nil
}

func cacheKey(model, system, user string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}

// Complete returns a cached response when available, otherwise delegates.
func (c *CachedClient) Complete(ctx context.Context, system, user string) (string, error) {
	key := cacheKey(c.inner.GetModel(), system, user)
	if text, ok := c.cache.Get(key); ok {
		logging.Debug("completion cache hit", "model", c.inner.GetModel())
		return text, nil
	}

	text, err := c.inner.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}

// GetModel returns the model name of the wrapped client.
func (c *CachedClient) GetModel() string {
	return c.inner.GetModel()
}

// Close closes the wrapped client.
func (c *CachedClient) Close() error {
	return c.inner.Close()
}
