package core

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_AddFollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	defer mock.Close()

	// A repeated follow hits the conflict clause and stays silent.
	mock.ExpectExec("INSERT INTO follows").
		WithArgs("alice", "bob").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewRepository(mock)
	require.NoError(t, repo.AddFollow(ctx, "alice", "bob"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RemoveFollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	defer mock.Close()

	mock.ExpectExec("DELETE FROM follows").
		WithArgs("alice", "bob").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.RemoveFollow(ctx, "alice", "bob"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListFollows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	defer mock.Close()

	mock.ExpectQuery("SELECT followee FROM follows").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"followee"}).
			AddRow("bob").
			AddRow("carol"))

	repo := NewRepository(mock)
	follows, err := repo.ListFollows(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"bob", "carol"}, follows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListFollowers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	defer mock.Close()

	mock.ExpectQuery("SELECT follower FROM follows").
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"follower"}))

	repo := NewRepository(mock)
	followers, err := repo.ListFollowers(ctx, "bob")
	require.NoError(t, err)

	assert.Empty(t, followers)
	assert.NotNil(t, followers)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ChatMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	t.Run("save", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("INSERT INTO chat_messages").
			WithArgs(int64(5), "bob", "see you there").
			WillReturnRows(pgxmock.NewRows([]string{"id", "sent_at"}).AddRow(int64(9), now))

		repo := NewRepository(mock)
		saved, err := repo.SaveChatMessage(ctx, &ChatMessage{
			EventId:  5,
			Username: "bob",
			Message:  "see you there",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(9), saved.Id)
		assert.Equal(t, now, saved.SentAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		defer mock.Close()

		mock.ExpectQuery("SELECT id, event_id, username, message, sent_at FROM chat_messages").
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "event_id", "username", "message", "sent_at"}).
				AddRow(int64(1), int64(5), "alice", "who is coming?", now).
				AddRow(int64(2), int64(5), "bob", "me", now))

		repo := NewRepository(mock)
		messages, err := repo.ListChatMessages(ctx, 5)
		require.NoError(t, err)

		require.Len(t, messages, 2)
		assert.Equal(t, "alice", messages[0].Username)
		assert.Equal(t, "me", messages[1].Message)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
