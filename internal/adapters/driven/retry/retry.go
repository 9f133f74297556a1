// Package retry provides backoff handling for outbound provider requests.
// Embedding and LLM adapters wrap transient failures with Transient so Do
// can tell a flaky network from a rejected request.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Default policy values.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 30 * time.Second
)

// Policy controls how Do spaces its attempts.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is scaled by the square of the attempt number.
	BaseDelay time.Duration

	// MaxDelay bounds a single backoff before jitter.
	MaxDelay time.Duration
}

// DefaultPolicy returns the policy used by the provider adapters.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// APIError is a non-2xx response from a provider API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsAPIError reports whether err wraps a provider API error.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// transientError marks a failure as worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// Transient wraps err so Do will retry it. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err (or any error it wraps) was marked
// with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// RetryableStatus reports whether an HTTP status code indicates a
// transient server-side condition (5xx or 429).
func RetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// Do executes op, retrying failures marked Transient with exponential
// backoff and jitter. Other errors abort immediately. The context
// cancels waits between attempts.
//
// The returned error keeps the transient marker in its chain, so callers
// can distinguish exhausted retries from a permanent rejection.
func Do(ctx context.Context, p Policy, name string, op func(ctx context.Context) error) error {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}

	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter to prevent thundering herd.
			base := time.Duration(attempt*attempt) * p.BaseDelay
			if base > p.MaxDelay {
				base = p.MaxDelay
			}
			jitter := time.Duration(rand.Int64N(int64(base/2 + 1)))
			backoff := base + jitter

			logger.Warn("retrying %s (attempt %d/%d) in %s", name, attempt+1, p.MaxRetries+1, backoff)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, p.MaxRetries+1, lastErr)
}
