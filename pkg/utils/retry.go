package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions contains configuration for retry behavior.
type RetryOptions struct {
	// Fixed wait between attempts.
	Delay time.Duration
	// Total attempts, including the first.
	MaxAttempts uint64
}

// WithRetry executes operation with a constant backoff, retrying only
// errors the classifier accepts. Any other error is returned immediately
// without further attempts.
func WithRetry[T any](ctx context.Context, operation func() (T, error), retryable func(error) bool, opts RetryOptions) (T, error) {
	var result T

	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 1
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Delay), opts.MaxAttempts-1)

	backoffOperation := func() error {
		var err error

		result, err = operation()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	err := backoff.Retry(backoffOperation, backoff.WithContext(b, ctx))

	return result, err
}
