// Package repotest provides in-memory repositories with the same error
// contract as the Postgres ones: missing rows yield pgx.ErrNoRows, a
// duplicate username yields a 23505 PgError and an unknown author a 23503.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store holds users and tweets. Ids are never reused and created_at strictly increases.
type Store struct {
	mu       sync.Mutex
	users    map[int64]dom.User
	tweets   map[int64]dom.Tweet
	userSeq  int64
	tweetSeq int64
	clock    time.Time

	// Calls counts repository calls by method name, e.g. "tweets.List".
	Calls map[string]int
}

func NewStore() *Store {
	return &Store{
		users:  make(map[int64]dom.User),
		tweets: make(map[int64]dom.Tweet),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Calls:  make(map[string]int),
	}
}

// Tweets returns a TweetRepo backed by the store.
func (s *Store) Tweets() *Tweets { return &Tweets{s: s} }

// Users returns a UserRepo backed by the store.
func (s *Store) Users() *Users { return &Users{s: s} }

// CallCount returns how many times method was invoked.
func (s *Store) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

// TweetCount returns the number of stored tweets.
func (s *Store) TweetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tweets)
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type Tweets struct{ s *Store }

func (r *Tweets) Create(_ context.Context, t dom.Tweet) (dom.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls["tweets.Create"]++
	if _, ok := r.s.users[t.UserID]; !ok {
		return dom.Tweet{}, &pgconn.PgError{Code: "23503", ConstraintName: "tweets_user_id_fkey"}
	}
	r.s.tweetSeq++
	t.ID = r.s.tweetSeq
	t.CreatedAt = r.s.tick()
	r.s.tweets[t.ID] = t
	return t, nil
}

func (r *Tweets) GetByID(_ context.Context, id int64) (dom.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls["tweets.GetByID"]++
	t, ok := r.s.tweets[id]
	if !ok {
		return dom.Tweet{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *Tweets) List(_ context.Context) ([]dom.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls["tweets.List"]++
	return r.s.sorted(func(dom.Tweet) bool { return true }), nil
}

func (r *Tweets) Update(_ context.Context, id int64, t dom.Tweet) (dom.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls["tweets.Update"]++
	cur, ok := r.s.tweets[id]
	if !ok {
		return dom.Tweet{}, pgx.ErrNoRows
	}
	cur.Text = t.Text
	cur.Image = t.Image
	r.s.tweets[id] = cur
	return cur, nil
}

func (r *Tweets) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls["tweets.Delete"]++
	if _, ok := r.s.tweets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tweets, id)
	return nil
}

func (r *Tweets) Search(_ context.Context, q string) ([]dom.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Calls["tweets.Search"]++
	needle := strings.ToLower(q)
	return r.s.sorted(func(t dom.Tweet) bool {
		return strings.Contains(strings.ToLower(t.Text), needle)
	}), nil
}

func (s *Store) sorted(keep func(dom.Tweet) bool) []dom.Tweet {
	out := make([]dom.Tweet, 0, len(s.tweets))
	for _, t := range s.tweets {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type Users struct{ s *Store }

func (r *Users) GetByUsername(_ context.Context, username string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *Users) Create(_ context.Context, username, email, passwordHash string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
	}
	r.s.userSeq++
	u := dom.User{
		ID:           r.s.userSeq,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.s.tick(),
	}
	r.s.users[u.ID] = u
	return u, nil
}
