package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock, instrument.NewNoop()), mock
}

func TestPostgres_InsertIfNoRecentIssuance(t *testing.T) {
	in := issuance("a@example.com", "d1", t0)
	args := []any{in.Email, in.CodeDigest, in.IssuedAt, in.ExpiresAt, in.Cutoff, in.CooldownUntil()}

	tests := []struct {
		name    string
		mockFn  func(m pgxmock.PgxPoolIface)
		want    bool
		wantErr bool
	}{
		{
			name: "accepted",
			mockFn: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO otp_issuances")).WithArgs(args...).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
			},
			want: true,
		},
		{
			name: "rejected by gate",
			mockFn: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO otp_issuances")).WithArgs(args...).
					WillReturnError(pgx.ErrNoRows)
			},
			want: false,
		},
		{
			name: "database error",
			mockFn: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO otp_issuances")).WithArgs(args...).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s, mock := newMockPostgres(t)
			tt.mockFn(mock)

			// Act
			got, err := s.InsertIfNoRecentIssuance(context.Background(), in)

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_FindAndDeleteMatching(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, mock := newMockPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM otp_records")).
			WithArgs("a@example.com", "d1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "code_digest", "issued_at", "expires_at"}).
				AddRow(int64(3), "a@example.com", "d1", t0, t0.Add(ttl)))

		rec, err := s.FindAndDeleteMatching(context.Background(), "a@example.com", "d1")

		require.NoError(t, err)
		assert.Equal(t, int64(3), rec.ID)
		assert.Equal(t, t0.Add(ttl), rec.ExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM otp_records")).
			WithArgs("a@example.com", "d1").
			WillReturnError(pgx.ErrNoRows)

		rec, err := s.FindAndDeleteMatching(context.Background(), "a@example.com", "d1")

		assert.Nil(t, rec)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_DeleteExpired(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM otp_records WHERE expires_at <= $1")).
		WithArgs(t0).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := s.DeleteExpired(context.Background(), t0)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
