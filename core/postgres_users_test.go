package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

		repo := NewRepository(mock)
		user, err := repo.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)

		assert.Equal(t, int64(1), user.Id)
		assert.Equal(t, "alice", user.Username)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		repo := NewRepository(mock)
		_, err = repo.CreateUser(ctx, "alice", "hash")
		require.ErrorIs(t, err, ErrUsernameTaken)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetUserByUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("SELECT id, username, password_hash").
			WithArgs("Alice").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "invite_code"}).
				AddRow(int64(1), "alice", "hash", "CITE-AAAA1111"))

		repo := NewRepository(mock)
		user, err := repo.GetUserByUsername(ctx, "Alice")
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "CITE-AAAA1111", user.InviteCode)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("SELECT id, username, password_hash").
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		repo := NewRepository(mock)
		_, err = repo.GetUserByUsername(ctx, "nobody")
		require.ErrorIs(t, err, ErrUserNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_SetInviteCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	defer mock.Close()

	mock.ExpectExec("UPDATE users SET invite_code").
		WithArgs("nobody", "CITE-AAAA1111").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewRepository(mock)
	require.ErrorIs(t, repo.SetInviteCode(ctx, "nobody", "CITE-AAAA1111"), ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stored profile", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("SELECT profile FROM user_profiles").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"profile"}).AddRow([]byte(`{"bio":"hello"}`)))

		repo := NewRepository(mock)
		profile, err := repo.GetProfile(ctx, "alice")
		require.NoError(t, err)

		assert.Equal(t, Profile{"bio": "hello"}, profile)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no profile yet", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("SELECT profile FROM user_profiles").
			WithArgs("alice").
			WillReturnError(pgx.ErrNoRows)

		repo := NewRepository(mock)
		profile, err := repo.GetProfile(ctx, "alice")
		require.NoError(t, err)

		assert.Equal(t, Profile{}, profile)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_SaveProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	defer mock.Close()

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs("alice", []byte(`{"bio":"hello"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.SaveProfile(ctx, "alice", Profile{"bio": "hello"}))

	require.NoError(t, mock.ExpectationsWereMet())
}
