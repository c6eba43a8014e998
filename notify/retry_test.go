package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestRetryPolicyValidate(t *testing.T) {
	// Ensure a zero-attempt policy is rejected.
	policy := RetryPolicy{}
	assert.Error(t, policy.Validate())

	policy.MaxAttempts = 1
	assert.NoError(t, policy.Validate())
}

func TestRetrySucceedsWithinBounds(t *testing.T) {
	// Ensure an operation failing twice succeeds under a three attempt policy.
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient failure %d", attempts)
		}
		return nil
	}

	err := Retry(context.Background(), op, RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond})
	assert.NoError(t, err)
	assert.Equal(t, attempts, 3)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	// Ensure a persistently failing operation stops at the attempt bound.
	attempts := 0
	op := func() error {
		attempts++
		return fmt.Errorf("persistent failure")
	}

	err := Retry(context.Background(), op, RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond})
	assert.Error(t, err)
	assert.Equal(t, attempts, 3)
}

func TestRetryHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	op := func() error {
		attempts++
		cancel()
		return fmt.Errorf("failure")
	}

	err := Retry(ctx, op, RetryPolicy{MaxAttempts: 10, Delay: time.Second})
	assert.Error(t, err)
	assert.Equal(t, attempts, 1)
}
