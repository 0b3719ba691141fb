package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
}

func (c *countingClient) Complete(ctx context.Context, system, user string) (string, error) {
	c.calls++
	return "answer to " + user, nil
}

func (c *countingClient) GetModel() string { return "test-model" }
func (c *countingClient) Close() error     { return nil }

func TestCachedClientDedupesIdenticalPrompts(t *testing.T) {
	inner := &countingClient{}
	cached, err := NewCachedClient(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := cached.Complete(ctx, "sys", "hello")
	require.NoError(t, err)
	second, err := cached.Complete(ctx, "sys", "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	// A different prompt misses the cache
	_, err = cached.Complete(ctx, "sys", "other")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
