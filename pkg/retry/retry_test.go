package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, counter)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		if counter < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, counter)
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	expectedErr := errors.New("still failing")
	counter := 0
	err := NewRetrier(fastConfig(2)).Do(context.Background(), func() error {
		counter++
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, counter, "initial try plus two retries")
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	expectedErr := errors.New("http 404")
	counter := 0
	err := NewRetrier(fastConfig(5)).Do(context.Background(), func() error {
		counter++
		return Permanent(expectedErr)
	})

	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 1, counter)
	assert.NoError(t, Permanent(nil))
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewDefaultRetrier()

	err := retrier.Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetry_Backoff(t *testing.T) {
	config := &Config{
		MaxRetries:    2,
		BackoffFactor: 2.0,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      time.Second,
		Jitter:        5 * time.Millisecond,
	}

	start := time.Now()
	_ = NewRetrier(config).Do(context.Background(), func() error {
		return errors.New("error")
	})

	// Two sleeps: 20ms then 40ms, each plus jitter.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
