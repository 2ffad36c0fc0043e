package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	wrapped := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), func(_ context.Context) error {
		calls++
		return Permanent(wrapped)
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Equal(t, wrapped, err)
	assert.Equal(t, 1, calls)
}

func TestDo_PlainErrorsAreNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(_ context.Context) error {
		calls++
		return errors.New("plain")
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustedAttemptsReturnUnwrappedError(t *testing.T) {
	wrapped := errors.New("still flaky")
	calls := 0
	err := Do(context.Background(), func(_ context.Context) error {
		calls++
		return Retryable(wrapped)
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0))

	assert.Equal(t, wrapped, err)
	assert.Equal(t, 3, calls)
}

func TestDo_RetryIfOverridesDefault(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(_ context.Context) error {
		calls++
		return errors.New("always retry me")
	}, WithMaxAttempts(2), WithInitialDelay(time.Millisecond), WithJitter(0),
		WithRetryIf(func(error) bool { return true }))

	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, func(_ context.Context) error {
		calls++
		cancel()
		return Retryable(errors.New("flaky"))
	}, WithMaxAttempts(5), WithInitialDelay(time.Minute))

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallbackFires(t *testing.T) {
	attempts := make([]int, 0)
	_ = Do(context.Background(), func(_ context.Context) error {
		return Retryable(errors.New("flaky"))
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0),
		WithOnRetry(func(attempt int, _ error, _ time.Duration) {
			attempts = append(attempts, attempt)
		}))

	// The last attempt returns without a retry, so only two callbacks.
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), func(_ context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", Retryable(errors.New("flaky"))
		}
		return "payload", nil
	}, WithInitialDelay(time.Millisecond), WithJitter(0))

	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.Equal(t, 2, calls)
}

func TestCalculateDelay_ExponentialAndCapped(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithMaxDelay(300*time.Millisecond),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(3))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(10))
}

func TestDatabaseRetrier_RetriesTransientFailures(t *testing.T) {
	// The preset backs the connect-time ping, where the first attempt
	// can lose to a warming pooler.
	calls := 0
	err := DatabaseRetrier().Do(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("connection refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
