package httpx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetrySucceedsAfterRetryableErrors(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewRateLimitError("groq", "slow down")
		}
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return NewAuthenticationError("groq", "bad key")
	}, fastRetryConfig())

	assert.Equal(t, 1, attempts)
	var httpErr *Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, ErrTypeAuthentication, httpErr.Type)
}

func TestRetryExhaustsBudget(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return NewServiceUnavailableError("groq", "down")
	}, fastRetryConfig())

	assert.Error(t, err)
	assert.Equal(t, 4, attempts) // initial + 3 retries
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		return NewRateLimitError("groq", "slow down")
	}, fastRetryConfig())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("plain error")))
	assert.True(t, ShouldRetry(NewTimeoutError("groq", "deadline")))
	assert.False(t, ShouldRetry(NewInvalidRequestError("groq", "bad payload")))
}

func TestExponentialBackoffIsBounded(t *testing.T) {
	config := DefaultRetryConfig()
	for attempt := 0; attempt < 10; attempt++ {
		backoff := ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, backoff, time.Duration(0))
		assert.LessOrEqual(t, backoff, config.MaxBackoff)
	}
}
