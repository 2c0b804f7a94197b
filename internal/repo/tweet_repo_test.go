package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var tweetCols = []string{"id", "user_id", "text", "image", "created_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPGTweetRepoCreate(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)
	now := time.Now().UTC()
	img := "media/cat.png"

	mock.ExpectQuery(`INSERT INTO tweets`).
		WithArgs(int64(7), "hi", &img).
		WillReturnRows(pgxmock.NewRows(tweetCols).AddRow(int64(1), int64(7), "hi", &img, now))

	got, err := r.Create(context.Background(), dom.Tweet{UserID: 7, Text: "hi", Image: &img})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)
	require.Equal(t, int64(7), got.UserID)
	require.Equal(t, "hi", got.Text)
	require.NotNil(t, got.Image)
	require.Equal(t, img, *got.Image)
	require.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTweetRepoGetByIDMissing(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)

	mock.ExpectQuery(`SELECT id, user_id, text, image, created_at FROM tweets WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows(tweetCols))

	_, err := r.GetByID(context.Background(), 42)
	require.True(t, errors.Is(err, pgx.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTweetRepoListOrdersNewestFirst(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC`).
		WillReturnRows(pgxmock.NewRows(tweetCols).
			AddRow(int64(2), int64(1), "second", (*string)(nil), now).
			AddRow(int64(1), int64(1), "first", (*string)(nil), now.Add(-time.Minute)))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(2), list[0].ID)
	require.Nil(t, list[0].Image)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTweetRepoListEmptyIsNotNil(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)

	mock.ExpectQuery(`FROM tweets`).WillReturnRows(pgxmock.NewRows(tweetCols))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestPGTweetRepoUpdate(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE tweets SET text = \$2, image = \$3`).
		WithArgs(int64(3), "edited", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(tweetCols).AddRow(int64(3), int64(9), "edited", (*string)(nil), now))

	got, err := r.Update(context.Background(), 3, dom.Tweet{Text: "edited"})
	require.NoError(t, err)
	require.Equal(t, "edited", got.Text)
	require.Equal(t, int64(9), got.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTweetRepoDelete(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)

	mock.ExpectExec(`DELETE FROM tweets WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM tweets WHERE id = \$1`).
		WithArgs(int64(6)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, r.Delete(context.Background(), 5))
	require.ErrorIs(t, r.Delete(context.Background(), 6), pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTweetRepoSearchEscapesPattern(t *testing.T) {
	mock := newMockPool(t)
	r := NewPGTweetRepo(mock)

	mock.ExpectQuery(`WHERE text ILIKE \$1`).
		WithArgs(`%50\%%`).
		WillReturnRows(pgxmock.NewRows(tweetCols))

	list, err := r.Search(context.Background(), "50%")
	require.NoError(t, err)
	require.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}
