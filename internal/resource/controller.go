package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned by TryAcquireMemory when the request
// does not fit.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MaxConcurrentSearches bounds parallel searches in batch lookups.
	// If 0, defaults to 4.
	MaxConcurrentSearches int64 `json:"max_concurrent_searches" yaml:"max_concurrent_searches" validate:"gte=0"`

	// MemoryLimitBytes bounds the bytes held by snapshot encode and decode
	// buffers. If 0, memory is tracked but not limited.
	MemoryLimitBytes int64 `json:"memory_limit_bytes" yaml:"memory_limit_bytes" validate:"gte=0"`

	// IOLimitBytesPerSec throttles snapshot reads and writes. If 0, unlimited.
	IOLimitBytesPerSec int64 `json:"io_limit_bytes_per_sec" yaml:"io_limit_bytes_per_sec" validate:"gte=0"`
}

// Controller enforces a Config.
type Controller struct {
	cfg Config

	searchSem *semaphore.Weighted

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentSearches <= 0 {
		cfg.MaxConcurrentSearches = 4
	}

	c := &Controller{
		cfg:       cfg,
		searchSem: semaphore.NewWeighted(cfg.MaxConcurrentSearches),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireSearch reserves a search slot, blocking until one is free or ctx
// is done.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.searchSem.Acquire(ctx, 1)
}

// ReleaseSearch returns a search slot.
func (c *Controller) ReleaseSearch() {
	if c == nil {
		return
	}
	c.searchSem.Release(1)
}

// MaxConcurrentSearches returns the number of search slots.
func (c *Controller) MaxConcurrentSearches() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxConcurrentSearches)
}

// AcquireMemory reserves bytes, blocking until they fit or ctx is done.
// Requests larger than the limit are clamped to the limit so that they can
// still run alone.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) (int64, error) {
	if c == nil || bytes <= 0 {
		return 0, nil
	}
	if c.memSem != nil {
		bytes = min(bytes, c.cfg.MemoryLimitBytes)
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return 0, err
		}
	}
	c.memUsed.Add(bytes)
	return bytes, nil
}

// TryAcquireMemory reserves bytes without blocking.
func (c *Controller) TryAcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases bytes returned by AcquireMemory or passed to a
// successful TryAcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIO waits until the IO limit admits bytes. Requests above the burst
// size are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO takes IO tokens without blocking.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
