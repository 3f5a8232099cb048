// Package resource bounds what the engine spends on embedding
// extraction: concurrent backend calls, call rate, and audio buffer
// memory held in flight.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentExtractions is the maximum number of embedding
	// extractions running at once. If 0, defaults to 1.
	MaxConcurrentExtractions int64

	// ExtractionsPerSec caps the rate of backend calls.
	// If 0, unlimited.
	ExtractionsPerSec float64

	// AudioMemoryLimitBytes is the hard limit for decoded audio held in
	// flight. If 0, no hard limit is enforced (only tracking).
	AudioMemoryLimitBytes int64
}

// Controller manages extraction concurrency, rate and audio memory.
// A nil *Controller enforces nothing.
type Controller struct {
	cfg Config

	extractSem *semaphore.Weighted
	limiter    *rate.Limiter // nil if unlimited

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentExtractions <= 0 {
		cfg.MaxConcurrentExtractions = 1
	}

	c := &Controller{
		cfg:        cfg,
		extractSem: semaphore.NewWeighted(cfg.MaxConcurrentExtractions),
	}

	if cfg.ExtractionsPerSec > 0 {
		burst := int(cfg.ExtractionsPerSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.ExtractionsPerSec), burst)
	}

	if cfg.AudioMemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.AudioMemoryLimitBytes)
	}

	return c
}

// AcquireExtraction reserves an extraction slot, waiting for the rate
// limiter first. Blocks until a slot is free or ctx is canceled.
func (c *Controller) AcquireExtraction(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return c.extractSem.Acquire(ctx, 1)
}

// TryAcquireExtraction reserves a slot without blocking. The rate limit
// still applies.
func (c *Controller) TryAcquireExtraction() bool {
	if c == nil {
		return true
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return false
	}
	return c.extractSem.TryAcquire(1)
}

// ReleaseExtraction releases an extraction slot.
func (c *Controller) ReleaseExtraction() {
	if c == nil {
		return
	}
	c.extractSem.Release(1)
}

// AcquireAudioMemory reserves memory for decoded audio.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireAudioMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseAudioMemory releases reserved audio memory.
func (c *Controller) ReleaseAudioMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// AudioMemoryUsage returns the current audio memory usage in bytes.
func (c *Controller) AudioMemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}
