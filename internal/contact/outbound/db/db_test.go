package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shandysiswandi/gocontact/internal/contact/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_CreateMessage(t *testing.T) {
	msg := entity.Message{
		ID:        7,
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Body:      "hello",
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "success"},
		{name: "duplicate id", execErr: &pgconn.PgError{Code: "23505"}, wantErr: goerror.ErrConflict},
		{name: "connection failure", execErr: errors.New("conn reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectExec("INSERT INTO contact_messages").
				WithArgs(msg.ID, msg.Name, msg.Email, msg.Body, msg.CreatedAt)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			// Act
			err = NewDB(mock, instrument.NewNoop()).CreateMessage(context.Background(), msg)

			// Assert
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.ErrorIs(t, err, tt.execErr)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
