package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Sweep(t *testing.T) {
	t.Run("deletes records expired before now", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("DeleteExpired", mock.Anything, baseTime).Return(int64(3), nil).Once()

		n, err := f.uc.Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("store error", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("DeleteExpired", mock.Anything, baseTime).Return(int64(0), errors.New("locked")).Once()

		_, err := f.uc.Sweep(context.Background())

		var gerr *goerror.Error
		require.True(t, errors.As(err, &gerr))
		assert.Equal(t, goerror.TypeServer, gerr.Type())
	})
}
