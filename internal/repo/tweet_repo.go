package repo

import (
	"context"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"
	"github.com/swoyamsuwal/django-twitter/internal/utils"

	"github.com/jackc/pgx/v5"
)

// TweetRepo provides tweet persistence. Lookups of missing rows return pgx.ErrNoRows.
type TweetRepo interface {
	Create(ctx context.Context, t dom.Tweet) (dom.Tweet, error)
	GetByID(ctx context.Context, id int64) (dom.Tweet, error)
	List(ctx context.Context) ([]dom.Tweet, error)
	Update(ctx context.Context, id int64, t dom.Tweet) (dom.Tweet, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q string) ([]dom.Tweet, error)
}

const tweetColumns = `id, user_id, text, image, created_at`

type PGTweetRepo struct {
	db DB
}

func NewPGTweetRepo(db DB) *PGTweetRepo {
	return &PGTweetRepo{db: db}
}

func (r *PGTweetRepo) Create(ctx context.Context, t dom.Tweet) (dom.Tweet, error) {
	query := `
		INSERT INTO tweets (user_id, text, image)
		VALUES ($1, $2, $3)
		RETURNING ` + tweetColumns
	return scanTweet(r.db.QueryRow(ctx, query, t.UserID, t.Text, t.Image))
}

func (r *PGTweetRepo) GetByID(ctx context.Context, id int64) (dom.Tweet, error) {
	query := `SELECT ` + tweetColumns + ` FROM tweets WHERE id = $1`
	return scanTweet(r.db.QueryRow(ctx, query, id))
}

func (r *PGTweetRepo) List(ctx context.Context) ([]dom.Tweet, error) {
	query := `SELECT ` + tweetColumns + ` FROM tweets ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectTweets(rows)
}

// Update replaces the mutable fields of the tweet. user_id and created_at never change.
func (r *PGTweetRepo) Update(ctx context.Context, id int64, t dom.Tweet) (dom.Tweet, error) {
	query := `
		UPDATE tweets SET text = $2, image = $3
		WHERE id = $1
		RETURNING ` + tweetColumns
	return scanTweet(r.db.QueryRow(ctx, query, id, t.Text, t.Image))
}

func (r *PGTweetRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Search returns tweets whose text contains q, ignoring case.
func (r *PGTweetRepo) Search(ctx context.Context, q string) ([]dom.Tweet, error) {
	query := `
		SELECT ` + tweetColumns + `
		FROM tweets WHERE text ILIKE $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, utils.ContainsPattern(q))
	if err != nil {
		return nil, err
	}
	return collectTweets(rows)
}

func scanTweet(row pgx.Row) (dom.Tweet, error) {
	var t dom.Tweet
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Image, &t.CreatedAt)
	return t, err
}

func collectTweets(rows pgx.Rows) ([]dom.Tweet, error) {
	defer rows.Close()
	list := make([]dom.Tweet, 0)
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
