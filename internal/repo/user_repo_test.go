package repo

import (
	"context"
	"testing"
	"time"

	"github.com/swoyamsuwal/django-twitter/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "username", "email", "password_hash", "created_at"}

func TestPGUserRepoCreate(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGUserRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO users \(username, email, password_hash\)`).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "alice", "alice@example.com", "hash", now))

	u, err := r.Create(context.Background(), "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "alice", u.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGUserRepoCreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGUserRepo(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := r.Create(context.Background(), "alice", "", "hash")
	require.Error(t, err)
	require.True(t, utils.IsPGUniqueViolation(err))
}

func TestPGUserRepoGetByUsername(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGUserRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(2), "bob", "", "h", now))
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(userCols))

	u, err := r.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, int64(2), u.ID)
	require.Equal(t, "h", u.PasswordHash)

	_, err = r.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
