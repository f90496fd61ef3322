package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failing returns an operation that fails the first n calls.
func failing(n int, calls *int) func() error {
	return func() error {
		*calls++
		if *calls <= n {
			return errors.New("transient")
		}
		return nil
	}
}

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		maxAttempts int
		wantErr     bool
		wantCalls   int
	}{
		{name: "first try", failures: 0, maxAttempts: 3, wantCalls: 1},
		{name: "eventual success", failures: 2, maxAttempts: 5, wantCalls: 3},
		{name: "exhausted", failures: 10, maxAttempts: 3, wantErr: true, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), failing(tt.failures, &calls), tt.maxAttempts, time.Millisecond)
			if tt.wantErr {
				assert.EqualError(t, err, "transient")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRetryWithBackoff_InvalidAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		calls := 0
		err := RetryWithBackoff(context.Background(), failing(0, &calls), n, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Zero(t, calls)
	}
}

func TestRetryWithBackoff_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("down")
	}, 10, time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := RetryWithBackoff(ctx, func() error { return errors.New("down") }, 100, 20*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryWithBackoff_DelaysGrow(t *testing.T) {
	var stamps []time.Time
	err := RetryWithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 4 {
			return errors.New("down")
		}
		return nil
	}, 5, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, stamps, 4)

	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 10*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[3].Sub(stamps[2]), 40*time.Millisecond)
}
