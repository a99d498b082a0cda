package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.TryAcquireMemory(50))
	require.NoError(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.ErrorIs(t, c.TryAcquireMemory(20), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	require.NoError(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestControllerAcquireMemoryBlocksAndClamps(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	got, err := c.AcquireMemory(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.AcquireMemory(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseMemory(got)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestControllerUnlimited(t *testing.T) {
	c := NewController(Config{})
	got, err := c.AcquireMemory(context.Background(), 1<<40)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), got)
	assert.True(t, c.TryAcquireIO(1<<30))
	assert.Equal(t, 4, c.MaxConcurrentSearches())
}

func TestControllerSearchSlots(t *testing.T) {
	c := NewController(Config{MaxConcurrentSearches: 1})
	require.NoError(t, c.AcquireSearch(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireSearch(ctx), context.DeadlineExceeded)

	c.ReleaseSearch()
	require.NoError(t, c.AcquireSearch(context.Background()))
	c.ReleaseSearch()
}

func TestNilController(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireSearch(context.Background()))
	c.ReleaseSearch()
	_, err := c.AcquireMemory(context.Background(), 10)
	require.NoError(t, err)
	c.ReleaseMemory(10)
	require.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.Equal(t, Config{}, c.Config())
	assert.Equal(t, 1, c.MaxConcurrentSearches())
}

func TestAcquireIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	require.NoError(t, c.AcquireIO(ctx, 16))
	// Larger than the burst: split into several waits.
	require.NoError(t, c.AcquireIO(ctx, 1<<20+1024))
}

func TestAcquireIOCancelled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.AcquireIO(ctx, 2))
}
