package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/khushveer007/courseget/internal/logger"
)

// calculateBackoff computes an exponential backoff duration with jitter.
func calculateBackoff(retryCount int, baseDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << uint(retryCount))

	// Jitter between 75% and 125% of the computed delay to avoid hammering
	// the remote in lockstep from parallel workers.
	jitterFactor := 0.75 + 0.5*rand.Float64()
	jitter := time.Duration(float64(delay) * jitterFactor)

	maxDelay := 2 * time.Minute
	if jitter > maxDelay {
		jitter = maxDelay
	}

	return jitter
}

// withRetry runs a discovery call under the same attempt ceiling and backoff
// policy as downloads.
func withRetry[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)

	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		logger.Warn("%s failed (attempt %d/%d): %v", op, attempt+1, maxRetries, err)

		if attempt == maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(calculateBackoff(attempt, baseDelay)):
		}
	}

	return result, lastErr
}
