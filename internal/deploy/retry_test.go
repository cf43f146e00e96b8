package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	policy := Policy{Attempts: 3, InitialDelay: time.Millisecond, Backoff: 2.0}

	calls := 0

	err := policy.Do(context.Background(), nil, func() error {
		calls++

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	policy := Policy{Attempts: 3, InitialDelay: time.Millisecond, Backoff: 2.0}

	calls := 0
	retries := 0

	err := policy.Do(context.Background(), func(attempt int, err error) {
		retries++
	}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	policy := Policy{Attempts: 2, InitialDelay: time.Millisecond, Backoff: 2.0}

	wantErr := errors.New("still broken")

	err := policy.Do(context.Background(), nil, func() error {
		return wantErr
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, wantErr)
	assert.Contains(t, err.Error(), "2 attempts")
}

func TestDo_ZeroAttemptsMeansOne(t *testing.T) {
	policy := Policy{}

	calls := 0

	err := policy.Do(context.Background(), nil, func() error {
		calls++

		return errors.New("nope")
	})
	require.Error(t, err)

	assert.Equal(t, 1, calls)
}

func TestDo_RespectsCancellation(t *testing.T) {
	policy := Policy{Attempts: 5, InitialDelay: time.Hour, Backoff: 2.0}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- policy.Do(ctx, nil, func() error {
			return errors.New("transient")
		})
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not honor cancellation")
	}
}
