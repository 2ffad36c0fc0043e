package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(_ context.Context) error { return errBoom }
func succeeding(_ context.Context) error { return nil }

func tripOpen(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		_ = cb.Execute(context.Background(), failing)
	}
	require.Equal(t, StateOpen, cb.State())
}

func TestExecute_ClosedPassesThrough(t *testing.T) {
	cb := New("test")

	require.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Counts().TotalSuccesses)
}

func TestExecute_OpensAfterThreshold(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(context.Background(), failing), errBoom)
		assert.Equal(t, StateClosed, cb.State())
	}

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecute_OpenRejectsImmediately(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Hour))
	tripOpen(t, cb, 1)

	err := cb.Execute(context.Background(), succeeding)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestExecute_HalfOpenAfterTimeoutThenCloses(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithTimeout(10*time.Millisecond),
		WithMaxHalfOpenRequests(2),
	)
	tripOpen(t, cb, 1)

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_HalfOpenFailureReopens(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(10*time.Millisecond))
	tripOpen(t, cb, 1)

	time.Sleep(20 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecute_HalfOpenLimitsProbes(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(5),
		WithTimeout(10*time.Millisecond),
		WithMaxHalfOpenRequests(1),
	)
	tripOpen(t, cb, 1)

	time.Sleep(20 * time.Millisecond)

	// First probe is admitted; a second concurrent one is not.
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(context.Background(), func(_ context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.ErrorIs(t, cb.Execute(context.Background(), succeeding), ErrTooManyRequests)

	close(release)
	require.NoError(t, <-done)
}

func TestExecuteWithFallback(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Hour))
	tripOpen(t, cb, 1)

	fallbackRan := false
	err := cb.ExecuteWithFallback(context.Background(), succeeding, func(cause error) error {
		fallbackRan = true
		assert.ErrorIs(t, cause, ErrCircuitOpen)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, fallbackRan)
}

func TestIsFailure_FiltersCountedErrors(t *testing.T) {
	benign := errors.New("expected condition")
	cb := New("test",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, benign) }),
	)

	assert.ErrorIs(t, cb.Execute(context.Background(), func(_ context.Context) error {
		return benign
	}), benign)
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestOnStateChange_Callback(t *testing.T) {
	type transition struct{ from, to State }
	var seen []transition

	cb := New("test",
		WithFailureThreshold(1),
		WithOnStateChange(func(_ string, from, to State) {
			seen = append(seen, transition{from, to})
		}),
	)
	tripOpen(t, cb, 1)

	require.Len(t, seen, 1)
	assert.Equal(t, transition{StateClosed, StateOpen}, seen[0])
}

func TestReset(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Hour))
	tripOpen(t, cb, 1)

	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, Counts{}, cb.Counts())
	require.NoError(t, cb.Execute(context.Background(), succeeding))
}
