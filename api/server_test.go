package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azh05/Recapsule/api/types"
)

type stoppableCache struct {
	stopped bool
}

func (c *stoppableCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (c *stoppableCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *stoppableCache) Delete(ctx context.Context, key string) error { return nil }

func (c *stoppableCache) Stop() { c.stopped = true }

func TestShutdownStopsFeedCache(t *testing.T) {
	feedCache := &stoppableCache{}

	server := NewServer("127.0.0.1:0")
	server.SetDependencies(&types.Dependencies{FeedCache: feedCache})
	require.NoError(t, server.Initialize())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	assert.True(t, feedCache.stopped)
}

func TestShutdownWithoutDependencies(t *testing.T) {
	server := NewServer("127.0.0.1:0")
	require.NoError(t, server.Initialize())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
}
