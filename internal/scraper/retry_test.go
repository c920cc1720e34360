package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(time.Duration) {}, func() error {
		calls++
		if calls < 2 {
			return ErrTimeout
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(time.Duration) {}, func() error {
		calls++
		return ErrRateLimited
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, 3, calls)
}

func TestWithRetryValidationIsNotRetried(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(time.Duration) {}, func() error {
		calls++
		return fmt.Errorf("%w: bad payload", ErrValidation)
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, 3, func(time.Duration) {}, func() error {
		calls++
		return ErrTimeout
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestBackoffByClass(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"rate limit grows exponentially", ErrRateLimited, 0, 2 * time.Second},
		{"rate limit second attempt", ErrRateLimited, 1, 4 * time.Second},
		{"timeout is flat", ErrTimeout, 2, 5 * time.Second},
		{"unclassified is short", errors.New("boom"), 1, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backoffFor(tt.err, tt.attempt))
		})
	}
}

func TestClassifyDeadline(t *testing.T) {
	err := classify(fmt.Errorf("do request: %w", context.DeadlineExceeded))
	assert.True(t, errors.Is(err, ErrTimeout))
}
