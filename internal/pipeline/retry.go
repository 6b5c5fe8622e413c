package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docchunk/internal/advisor"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *advisor.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// RetryingProvider retries transient provider failures (rate limits, 5xx)
// up to MaxRetries attempts.
type RetryingProvider struct {
	advisor.Provider
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

// WithRetry wraps p so retryable errors are retried with Backoff.
func WithRetry(p advisor.Provider, log *slog.Logger) *RetryingProvider {
	if log == nil {
		log = slog.Default()
	}
	return &RetryingProvider{Provider: p, log: log, backoff: Backoff}
}

func (r *RetryingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := range MaxRetries {
		reply, err := r.Provider.Complete(ctx, prompt)
		if err == nil || !IsRetryable(err) {
			return reply, err
		}
		lastErr = err
		if attempt == MaxRetries-1 {
			break
		}
		r.log.Warn("retryable llm error", "provider", r.Name(), "attempt", attempt, "error", err)
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
