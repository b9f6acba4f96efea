package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ""), mr
}

func TestStateTracker_Exec(t *testing.T) {
	// Arrange
	st, mr := newTracker(t)
	ctx := context.Background()
	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	// Act
	first := st.Exec(ctx, "k1", fn, WithStateTTL(time.Hour))
	second := st.Exec(ctx, "k1", fn)

	// Assert
	require.NoError(t, first)
	assert.ErrorIs(t, second, ErrAlreadyCompleted)
	assert.Equal(t, 1, calls)
	got, err := mr.Get("idempotency:k1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted.String(), got)
	assert.Equal(t, time.Hour, mr.TTL("idempotency:k1"))
}

func TestStateTracker_ExecFailureReleasesKey(t *testing.T) {
	st, mr := newTracker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.Exec(ctx, "k2", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("idempotency:k2"))

	err = st.Exec(ctx, "k2", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestStateTracker_InProgress(t *testing.T) {
	st, mr := newTracker(t)
	require.NoError(t, mr.Set("idempotency:k3", StateInProgress.String()))

	err := st.Exec(context.Background(), "k3", func(context.Context) error {
		t.Fatal("must not run")
		return nil
	})

	assert.ErrorIs(t, err, ErrAlreadyInProgress)
}

func TestStateTracker_InvalidState(t *testing.T) {
	st, mr := newTracker(t)
	require.NoError(t, mr.Set("idempotency:k4", "garbage"))

	state, err := st.Acquire(context.Background(), "k4", time.Minute)

	assert.Equal(t, StateError, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateTracker_RedisDown(t *testing.T) {
	st, mr := newTracker(t)
	mr.Close()

	err := st.Exec(context.Background(), "k5", func(context.Context) error { return nil })

	assert.Error(t, err)
}
