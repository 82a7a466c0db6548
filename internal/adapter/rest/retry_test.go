package rest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchscope/branchscope/internal/adapter/rest"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := rest.DefaultRetryConfig()

	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, time.Second, config.InitialBackoff)
	assert.Equal(t, 16*time.Second, config.MaxBackoff)
	assert.Equal(t, 2.0, config.Multiplier)
}

func TestExponentialBackoff(t *testing.T) {
	config := rest.RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     16 * time.Second,
		Multiplier:     2.0,
	}

	tests := []struct {
		name    string
		attempt int
		minWait time.Duration
		maxWait time.Duration
	}{
		{"attempt 0", 0, 1500 * time.Millisecond, 2500 * time.Millisecond}, // 2s ± 25%
		{"attempt 1", 1, 3 * time.Second, 5 * time.Second},                 // 4s ± 25%
		{"attempt 2", 2, 6 * time.Second, 10 * time.Second},                // 8s ± 25%
		{"attempt 3", 3, 12 * time.Second, 16 * time.Second},               // 16s (capped)
		{"attempt 4", 4, 12 * time.Second, 16 * time.Second},               // 16s (capped)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run multiple times to verify jitter stays in range
			for i := 0; i < 10; i++ {
				backoff := rest.ExponentialBackoff(tt.attempt, config)
				assert.GreaterOrEqual(t, backoff, tt.minWait, "backoff too short")
				assert.LessOrEqual(t, backoff, tt.maxWait, "backoff too long")
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"rate limit error should retry", rest.NewRateLimitError("gitlab", "too many requests"), true},
		{"service unavailable should retry", rest.NewServiceUnavailableError("gitlab", "overloaded"), true},
		{"timeout should retry", rest.NewTimeoutError("gitlab", "timed out"), true},
		{"authentication error should not retry", rest.NewAuthenticationError("gitlab", "invalid token"), false},
		{"invalid request should not retry", rest.NewInvalidRequestError("gitlab", "bad request"), false},
		{"not found should not retry", rest.NewNotFoundError("gitlab", "missing project"), false},
		{"generic error should not retry", errors.New("generic error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rest.ShouldRetry(tt.err))
		})
	}
}

func fastConfig() rest.RetryConfig {
	return rest.RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return rest.NewServiceUnavailableError("gitlab", "try again")
		}
		return nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return rest.NewAuthenticationError("gitlab", "bad token")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return rest.NewServiceUnavailableError("gitlab", "still down")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 4, calls, "initial attempt plus MaxRetries")

	var restErr *rest.Error
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, rest.ErrTypeServiceUnavailable, restErr.Type)
}

func TestRetryWithBackoff_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := rest.RetryWithBackoff(ctx, func(ctx context.Context) error {
		calls++
		return nil
	}, fastConfig())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls, "a cancelled context should prevent the first attempt")
}

func TestRetryWithBackoff_CancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := rest.RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Minute,
		MaxBackoff:     time.Minute,
		Multiplier:     2.0,
	}

	done := make(chan error, 1)
	go func() {
		done <- rest.RetryWithBackoff(ctx, func(ctx context.Context) error {
			return rest.NewServiceUnavailableError("gitlab", "down")
		}, config)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("retry loop did not observe cancellation")
	}
}
