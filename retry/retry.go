// ABOUTME: This file implements the single-retry policy used for outbound fetches
// ABOUTME: A classifier decides which errors are worth the one extra attempt
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// Classifier reports whether an error is transient.
type Classifier func(error) bool

type Retrier struct {
	config      Config
	isRetryable Classifier
	logger      *slog.Logger
}

func New(config Config, classifier Classifier, logger *slog.Logger) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Retrier{
		config:      config,
		isRetryable: classifier,
		logger:      logger,
	}
}

// Do runs the operation, repeating it after Delay while the classifier
// marks the failure transient and attempts remain. The last error is
// returned unwrapped so callers can classify it themselves.
func (r *Retrier) Do(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				r.logger.InfoContext(ctx, "operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		retryable := r.isRetryable != nil && r.isRetryable(lastErr)
		if attempt == r.config.MaxAttempts || !retryable {
			return lastErr
		}

		r.logger.WarnContext(ctx, "operation attempt failed, retrying",
			"attempt", attempt,
			"error", lastErr,
			"delay", r.config.Delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(r.config.Delay):
		}
	}

	return lastErr
}
