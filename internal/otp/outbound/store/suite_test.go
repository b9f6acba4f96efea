package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0       = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cooldown = time.Minute
	ttl      = 5 * time.Minute
)

func issuance(email, digest string, at time.Time) entity.Issuance {
	return entity.Issuance{
		Email:      email,
		CodeDigest: digest,
		IssuedAt:   at,
		ExpiresAt:  at.Add(ttl),
		Cutoff:     at.Add(-cooldown),
	}
}

type suiteOptions struct {
	// reaps is false for drivers that expire data on their own.
	reaps bool
}

// runStoreSuite checks the behaviour every driver must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store, opt suiteOptions) {
	ctx := context.Background()

	t.Run("cooldown gates issuance", func(t *testing.T) {
		s := newStore(t)

		ok, err := s.InsertIfNoRecentIssuance(ctx, issuance("a@example.com", "d1", t0))
		require.NoError(t, err)
		assert.True(t, ok, "first issuance")

		ok, err = s.InsertIfNoRecentIssuance(ctx, issuance("a@example.com", "d2", t0.Add(59*time.Second)))
		require.NoError(t, err)
		assert.False(t, ok, "inside cooldown")

		ok, err = s.InsertIfNoRecentIssuance(ctx, issuance("b@example.com", "d3", t0.Add(59*time.Second)))
		require.NoError(t, err)
		assert.True(t, ok, "other email is independent")

		ok, err = s.InsertIfNoRecentIssuance(ctx, issuance("a@example.com", "d4", t0.Add(cooldown)))
		require.NoError(t, err)
		assert.True(t, ok, "exactly at cooldown boundary")
	})

	t.Run("rejected issuance stores nothing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.InsertIfNoRecentIssuance(ctx, issuance("a@example.com", "d1", t0))
		require.NoError(t, err)
		ok, err := s.InsertIfNoRecentIssuance(ctx, issuance("a@example.com", "rejected", t0.Add(time.Second)))
		require.NoError(t, err)
		require.False(t, ok)

		_, err = s.FindAndDeleteMatching(ctx, "a@example.com", "rejected")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("consumes latest expiry first and exactly once", func(t *testing.T) {
		s := newStore(t)
		first := issuance("a@example.com", "same", t0)
		second := issuance("a@example.com", "same", t0.Add(2*time.Minute))
		other := issuance("a@example.com", "other", t0.Add(4*time.Minute))

		for _, in := range []entity.Issuance{first, second, other} {
			ok, err := s.InsertIfNoRecentIssuance(ctx, in)
			require.NoError(t, err)
			require.True(t, ok)
		}

		rec, err := s.FindAndDeleteMatching(ctx, "a@example.com", "same")
		require.NoError(t, err)
		assert.True(t, second.ExpiresAt.Equal(rec.ExpiresAt), "got %v", rec.ExpiresAt)
		assert.True(t, second.IssuedAt.Equal(rec.IssuedAt))
		assert.Equal(t, "a@example.com", rec.Email)
		assert.Equal(t, "same", rec.CodeDigest)

		rec, err = s.FindAndDeleteMatching(ctx, "a@example.com", "same")
		require.NoError(t, err)
		assert.True(t, first.ExpiresAt.Equal(rec.ExpiresAt))

		_, err = s.FindAndDeleteMatching(ctx, "a@example.com", "same")
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		rec, err = s.FindAndDeleteMatching(ctx, "a@example.com", "other")
		require.NoError(t, err, "other digests are unaffected")
		assert.Equal(t, "other", rec.CodeDigest)
	})

	t.Run("digest of another email does not match", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertIfNoRecentIssuance(ctx, issuance("a@example.com", "d1", t0))
		require.NoError(t, err)

		_, err = s.FindAndDeleteMatching(ctx, "b@example.com", "d1")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("concurrent issuance admits one", func(t *testing.T) {
		s := newStore(t)
		const n = 16

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for i := range n {
			wg.Go(func() {
				ok, err := s.InsertIfNoRecentIssuance(ctx, issuance("race@example.com", "d"+string(rune('a'+i)), t0))
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			})
		}
		wg.Wait()

		assert.Equal(t, 1, accepted)
	})

	t.Run("concurrent consumption succeeds once", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertIfNoRecentIssuance(ctx, issuance("race@example.com", "d1", t0))
		require.NoError(t, err)

		const n = 16
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			consumed int
		)
		for range n {
			wg.Go(func() {
				_, err := s.FindAndDeleteMatching(ctx, "race@example.com", "d1")
				if err == nil {
					mu.Lock()
					consumed++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, goerror.ErrNotFound)
			})
		}
		wg.Wait()

		assert.Equal(t, 1, consumed)
	})

	t.Run("delete expired includes records expiring exactly now", func(t *testing.T) {
		if !opt.reaps {
			t.Skip("driver expires data on its own")
		}

		s := newStore(t)
		_, err := s.InsertIfNoRecentIssuance(ctx, issuance("edge@example.com", "d1", t0))
		require.NoError(t, err)

		n, err := s.DeleteExpired(ctx, t0.Add(ttl))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.FindAndDeleteMatching(ctx, "edge@example.com", "d1")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertIfNoRecentIssuance(ctx, issuance("old@example.com", "d1", t0))
		require.NoError(t, err)
		_, err = s.InsertIfNoRecentIssuance(ctx, issuance("new@example.com", "d2", t0.Add(2*time.Minute)))
		require.NoError(t, err)

		n, err := s.DeleteExpired(ctx, t0.Add(6*time.Minute))
		require.NoError(t, err)

		if !opt.reaps {
			assert.Zero(t, n)
			return
		}

		assert.Equal(t, int64(1), n)
		_, err = s.FindAndDeleteMatching(ctx, "old@example.com", "d1")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		_, err = s.FindAndDeleteMatching(ctx, "new@example.com", "d2")
		assert.NoError(t, err)

		ok, err := s.InsertIfNoRecentIssuance(ctx, issuance("old@example.com", "d3", t0.Add(6*time.Minute)))
		require.NoError(t, err)
		assert.True(t, ok, "reaped gate allows a new issuance")
	})
}
