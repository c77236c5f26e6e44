package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// fatalPatterns are provider error fragments that no amount of retrying
// will fix: credentials, billing, and authorization failures.
var fatalPatterns = []string{
	"credit balance",
	"rate limit",
	"quota exceeded",
	"billing",
	"invalid api key",
	"authentication failed",
	"unauthorized",
	"401",
	"403",
}

// isFatalAPIError reports whether a provider error is non-transient.
// Everything else (timeouts, 5xx, connection resets) is treated as
// retryable.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range fatalPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsFatal reports whether a provider error should not be retried.
func IsFatal(err error) bool {
	return isFatalAPIError(err)
}

const (
	retryAttempts     = 3
	retryInitialDelay = 500 * time.Millisecond
)

// withRetry runs fn up to retryAttempts times with exponential backoff.
// Fatal provider errors and context cancellation stop the loop early.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryInitialDelay

	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ctx.Err(), err)
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err = fn(); err == nil {
			return nil
		}
		if isFatalAPIError(err) {
			return err
		}
	}
	return err
}
