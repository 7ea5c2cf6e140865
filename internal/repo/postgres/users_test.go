package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "password_hash", "name", "created_at"}

func TestUsersRepo_Create(t *testing.T) {
	now := time.Now().UTC()
	const id = "0d6b1f7a-3c9e-4f55-8d2b-1b0b8f0c2a11"

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantAny   bool
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", "A", pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows(userCols).AddRow(id, "a@b.com", "hash", "A", now))
			},
		},
		{
			name: "on_conflict_returns_no_row",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", "A", pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows(userCols))
			},
			wantErr: user.ErrEmailTaken,
		},
		{
			name: "unique_violation",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", "A", pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: user.ErrEmailTaken,
		},
		{
			name: "driver_error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", "A", pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUsersRepo(mock, nil)
			got, err := repo.Create(context.Background(), "a@b.com", "hash", "A")

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantAny:
				require.Error(t, err)
				assert.NotErrorIs(t, err, user.ErrEmailTaken)
			default:
				require.NoError(t, err)
				assert.Equal(t, id, got.ID)
				assert.Equal(t, "hash", got.PasswordHash)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUsersRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM users WHERE email`).
		WithArgs("a@b.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "a@b.com", "hash", "A", now))
	mock.ExpectQuery(`SELECT .* FROM users WHERE email`).
		WithArgs("A@b.com").
		WillReturnRows(pgxmock.NewRows(userCols))

	repo := NewUsersRepo(mock, nil)

	u, err := repo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	// case-sensitive: a different casing is a different email
	_, err = repo.GetByEmail(context.Background(), "A@b.com")
	require.ErrorIs(t, err, user.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_GetByID_MalformedSkipsQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewUsersRepo(mock, nil).GetByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, user.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM users ORDER BY`).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@b.com", "h1", "A", now).
			AddRow("u2", "c@d.com", "h2", "C", now))

	got, err := NewUsersRepo(mock, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c@d.com", got[1].Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}
