package resilience

import (
	"context"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig waits 4s then 8s between three attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Result is the outcome of a retried operation. A failed Result is a normal
// return value, callers decide what to substitute.
type Result[T any] struct {
	Value    T
	Err      error
	Attempts int
}

// OK reports whether the operation eventually succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Retrier runs an operation with bounded attempts and exponential backoff
type Retrier struct {
	cfg   RetryConfig
	sleep Sleeper
}

// NewRetrier creates a retrier; zero fields of cfg take the defaults
func NewRetrier(cfg RetryConfig) *Retrier {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return &Retrier{cfg: cfg, sleep: sleepContext}
}

// WithSleeper replaces the wait function
func (r *Retrier) WithSleeper(s Sleeper) *Retrier {
	r.sleep = s
	return r
}

// Config returns the effective retry configuration
func (r *Retrier) Config() RetryConfig {
	return r.cfg
}

// Backoff returns the wait after attempt k (1-indexed): min(base*2^(k-1), cap).
func (r *Retrier) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return retryablehttp.DefaultBackoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt-1, nil)
}

// Retry attempts op up to MaxAttempts times. It never panics or returns an
// error; exhaustion is reported through Result.Err.
func Retry[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) Result[T] {
	var res Result[T]

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		res.Attempts = attempt

		value, err := op(ctx)
		if err == nil {
			res.Value = value
			res.Err = nil
			return res
		}
		res.Err = err

		if attempt == r.cfg.MaxAttempts {
			break
		}
		if err := r.sleep(ctx, r.Backoff(attempt)); err != nil {
			res.Err = err
			break
		}
	}

	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
