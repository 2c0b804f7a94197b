package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/swoyamsuwal/django-twitter/internal/cache"
	dom "github.com/swoyamsuwal/django-twitter/internal/domain"
	"github.com/swoyamsuwal/django-twitter/internal/events"
	"github.com/swoyamsuwal/django-twitter/internal/metrics"
	"github.com/swoyamsuwal/django-twitter/internal/repo"
	"github.com/swoyamsuwal/django-twitter/internal/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TweetInput is the client-writable part of a tweet.
type TweetInput struct {
	Text  string
	Image *string
}

// Ownership decides who may update or delete a tweet.
type Ownership bool

const (
	// OwnerOnly requires a logged-in author; other users' tweets look missing.
	OwnerOnly Ownership = true
	// AnyCaller lets anyone, even anonymous callers, modify any tweet.
	AnyCaller Ownership = false
)

func (o Ownership) String() string {
	if o == OwnerOnly {
		return "owner-only"
	}
	return "any-caller"
}

type TweetService struct {
	repo      repo.TweetRepo
	cache     *cache.TweetCache
	pub       events.Publisher
	log       *zap.Logger
	ownership Ownership
	sf        singleflight.Group
}

// NewTweetService creates a TweetService. If c is nil, caching is disabled;
// a nil publisher or logger discards events or log lines.
func NewTweetService(r repo.TweetRepo, c *cache.TweetCache, pub events.Publisher, log *zap.Logger, ownership Ownership) *TweetService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TweetService{repo: r, cache: c, pub: pub, log: log.Named("tweets"), ownership: ownership}
}

// Ownership returns the policy applied to Update and Delete.
func (s *TweetService) Ownership() Ownership { return s.ownership }

func (s *TweetService) List(ctx context.Context) ([]dom.Tweet, error) {
	if s.cache == nil {
		return s.repo.List(ctx)
	}
	return s.cached(ctx, "list", "list",
		func(gen int64) ([]dom.Tweet, error) { return s.cache.GetList(ctx, gen) },
		func(gen int64, list []dom.Tweet) error { return s.cache.SetList(ctx, gen, list) },
		func() ([]dom.Tweet, error) { return s.repo.List(ctx) },
	)
}

func (s *TweetService) GetByID(ctx context.Context, id int64) (dom.Tweet, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Tweet{}, ErrNotFound
		}
		return dom.Tweet{}, err
	}
	return t, nil
}

// Create stores a tweet authored by authorID. The author always comes from
// the caller's session, never from client input.
func (s *TweetService) Create(ctx context.Context, authorID int64, in TweetInput) (dom.Tweet, error) {
	if authorID <= 0 {
		return dom.Tweet{}, ErrUnauthenticated
	}
	in, err := normalizeInput(in)
	if err != nil {
		return dom.Tweet{}, err
	}
	t, err := s.repo.Create(ctx, dom.Tweet{UserID: authorID, Text: in.Text, Image: in.Image})
	if err != nil {
		if utils.IsPGForeignKeyViolation(err) {
			return dom.Tweet{}, ErrUnknownAuthor
		}
		return dom.Tweet{}, err
	}
	metrics.TweetsWritten.WithLabelValues("create").Inc()
	s.afterWrite(ctx, events.TweetCreated, t)
	return t, nil
}

// Update replaces text and image of tweet id. actorID is 0 for anonymous callers.
func (s *TweetService) Update(ctx context.Context, actorID, id int64, in TweetInput) (dom.Tweet, error) {
	if _, err := s.Authorize(ctx, actorID, id); err != nil {
		return dom.Tweet{}, err
	}
	in, err := normalizeInput(in)
	if err != nil {
		return dom.Tweet{}, err
	}
	t, err := s.repo.Update(ctx, id, dom.Tweet{Text: in.Text, Image: in.Image})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Tweet{}, ErrNotFound
		}
		return dom.Tweet{}, err
	}
	metrics.TweetsWritten.WithLabelValues("update").Inc()
	s.afterWrite(ctx, events.TweetUpdated, t)
	return t, nil
}

// Delete permanently removes tweet id. actorID is 0 for anonymous callers.
func (s *TweetService) Delete(ctx context.Context, actorID, id int64) error {
	t, err := s.Authorize(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	metrics.TweetsWritten.WithLabelValues("delete").Inc()
	s.afterWrite(ctx, events.TweetDeleted, t)
	return nil
}

// Search returns tweets containing q, ignoring case. An empty q matches nothing.
func (s *TweetService) Search(ctx context.Context, q string) ([]dom.Tweet, error) {
	if q == "" {
		return []dom.Tweet{}, nil
	}
	if s.cache == nil {
		return s.repo.Search(ctx, q)
	}
	return s.cached(ctx, "search", "search:"+strings.ToLower(q),
		func(gen int64) ([]dom.Tweet, error) { return s.cache.GetSearch(ctx, gen, q) },
		func(gen int64, list []dom.Tweet) error { return s.cache.SetSearch(ctx, gen, q, list) },
		func() ([]dom.Tweet, error) { return s.repo.Search(ctx, q) },
	)
}

// cached serves a read from the current cache generation, loading and
// storing it on a miss. Concurrent misses in one generation share a load.
func (s *TweetService) cached(
	ctx context.Context,
	kind, key string,
	get func(gen int64) ([]dom.Tweet, error),
	set func(gen int64, list []dom.Tweet) error,
	load func() ([]dom.Tweet, error),
) ([]dom.Tweet, error) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("cache generation", zap.String("kind", kind), zap.Error(err))
		return load()
	}
	v, err, _ := s.sf.Do(strconv.FormatInt(gen, 10)+":"+key, func() (interface{}, error) {
		if list, err := get(gen); err == nil && list != nil {
			metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
			return list, nil
		} else if err != nil {
			s.log.Warn("cache get", zap.String("kind", kind), zap.Error(err))
		}
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		list, err := load()
		if err != nil {
			return nil, err
		}
		if err := set(gen, list); err != nil {
			s.log.Warn("cache set", zap.String("kind", kind), zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Tweet), nil
}

// Authorize loads tweet id and applies the ownership policy for actorID.
// Under OwnerOnly another user's tweet is reported as ErrNotFound.
func (s *TweetService) Authorize(ctx context.Context, actorID, id int64) (dom.Tweet, error) {
	if s.ownership == OwnerOnly && actorID <= 0 {
		return dom.Tweet{}, ErrUnauthenticated
	}
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return dom.Tweet{}, err
	}
	if s.ownership == OwnerOnly && !t.OwnedBy(actorID) {
		return dom.Tweet{}, ErrNotFound
	}
	return t, nil
}

func (s *TweetService) afterWrite(ctx context.Context, build func(dom.Tweet) (events.Event, error), t dom.Tweet) {
	s.invalidateCache(ctx)
	ev, err := build(t)
	if err != nil {
		s.log.Warn("build event", zap.Int64("tweet_id", t.ID), zap.Error(err))
		return
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event", zap.String("type", ev.Type), zap.Int64("tweet_id", t.ID), zap.Error(err))
	}
}

func (s *TweetService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		if _, err := s.cache.InvalidateAll(ctx); err != nil {
			s.log.Warn("cache invalidate", zap.Error(err))
		}
	}
}

func normalizeInput(in TweetInput) (TweetInput, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return TweetInput{}, ErrBlankText
	}
	if in.Image != nil {
		img := strings.TrimSpace(*in.Image)
		if img == "" {
			in.Image = nil
		} else {
			in.Image = &img
		}
	}
	return in, nil
}
