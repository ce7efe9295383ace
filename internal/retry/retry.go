// Package retry wraps flaky HTTP fetches with bounded exponential backoff.
// Episode pages, the sitemap, and cover CDNs all rate-limit or reset
// connections under load; one transient failure should not abort a run.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Config controls attempt count and backoff shape.
type Config struct {
	// Attempts is the total number of tries including the first. A value
	// of 1 disables retries. Default: 3.
	Attempts int

	// Backoff is the delay before the first retry; each further retry
	// doubles it. Default: 500ms.
	Backoff time.Duration

	// MaxBackoff caps the doubled delay. Default: 10s.
	MaxBackoff time.Duration
}

// Defaults returns the configuration used by the scraping paths.
func Defaults() Config {
	return Config{
		Attempts:   3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	return c
}

// Do runs fn until it succeeds, returns a permanent error, or the attempts
// are exhausted. Only errors classified by Transient are retried; context
// cancellation stops immediately.
func Do(ctx context.Context, cfg Config, op string, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !Transient(lastErr) || attempt == cfg.Attempts-1 {
			return lastErr
		}

		delay := backoff(attempt, cfg)
		zap.L().Warn("transient failure, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

// DoVal is Do for operations that produce a value.
func DoVal[T any](ctx context.Context, cfg Config, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, cfg, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// backoff doubles the base delay per attempt, caps it, and jitters ±25% so
// paced loops don't resynchronize against the same server.
func backoff(attempt int, cfg Config) time.Duration {
	d := float64(cfg.Backoff) * math.Pow(2, float64(attempt))
	if d > float64(cfg.MaxBackoff) {
		d = float64(cfg.MaxBackoff)
	}
	jitter := 1 + (rand.Float64()-0.5)/2
	return time.Duration(d * jitter)
}
