package retry

import (
	"context"
	"fmt"
	"time"

	"s3-utils/core/storage"

	"go.uber.org/zap"
)

// Config holds retry tuning for storage calls.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `mapstructure:"max_attempts" default:"5"`
	// BaseDelayMS is the backoff delay before the first retry, in milliseconds.
	BaseDelayMS int `mapstructure:"base_delay_ms" default:"200"`
	// MaxDelayMS caps the backoff delay, in milliseconds.
	MaxDelayMS int `mapstructure:"max_delay_ms" default:"30000"`
}

// ExhaustedError is returned when all retry attempts failed with a
// retryable error. It wraps the last underlying error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Policy wraps a single storage call with classification and exponential
// backoff. Retryable errors (per storage.Retryable) are retried with
// base*2^(attempt-1) delays capped at the configured maximum; terminal
// errors propagate immediately after one attempt.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *zap.Logger

	// retryable classifies errors; defaults to storage.Retryable.
	retryable func(error) bool
	// sleep waits for the backoff delay; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a retry policy from the configuration.
func NewPolicy(cfg Config, logger *zap.Logger) *Policy {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	baseDelay := time.Duration(cfg.BaseDelayMS) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	maxDelay := time.Duration(cfg.MaxDelayMS) * time.Millisecond
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Policy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		logger:      logger,
		retryable:   storage.Retryable,
		sleep:       sleepContext,
	}
}

// Do invokes fn, retrying on transient failures. The op string is used for
// logging only.
func (p *Policy) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	delay := p.baseDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return err
		}

		lastErr = err
		if attempt == p.maxAttempts {
			break
		}

		p.logger.Warn("transient storage failure, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		if err := p.sleep(ctx, delay); err != nil {
			return err
		}

		// Exponential backoff with cap
		delay *= 2
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}

	return &ExhaustedError{Attempts: p.maxAttempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
