package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy describes an explicit bounded retry policy.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts uint64
	// Delay is the fixed delay between attempts.
	Delay time.Duration
}

// Validate asserts the policy has sane inputs.
func (p *RetryPolicy) Validate() error {
	if p.MaxAttempts == 0 {
		return fmt.Errorf("retry policy max attempts cannot be zero")
	}

	return nil
}

// Retry runs the provided operation, retrying failures under the provided
// policy. The last attempt's error is returned once attempts are exhausted.
func Retry(ctx context.Context, op func() error, policy RetryPolicy) error {
	err := policy.Validate()
	if err != nil {
		return err
	}

	strategy := backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Delay),
		policy.MaxAttempts-1)

	return backoff.Retry(op, backoff.WithContext(strategy, ctx))
}
