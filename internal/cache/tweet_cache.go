package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyGen    = "tweet:gen"
	keyList   = "tweet:list:"
	keySearch = "tweet:search:"
)

// TweetCache caches the timeline and search results in Redis.
//
// Entries are keyed by a generation number that every write bumps, so a
// result computed before a write can never be served after it.
type TweetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTweetCache returns a new TweetCache.
func NewTweetCache(rdb *redis.Client, ttl time.Duration) *TweetCache {
	return &TweetCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current cache generation, 0 before the first write.
func (c *TweetCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGen).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// GetList returns cached list or nil if miss.
func (c *TweetCache) GetList(ctx context.Context, gen int64) ([]dom.Tweet, error) {
	return c.get(ctx, listKey(gen))
}

// SetList stores the list in cache.
func (c *TweetCache) SetList(ctx context.Context, gen int64, list []dom.Tweet) error {
	return c.set(ctx, listKey(gen), list)
}

// GetSearch returns cached search result for query q, or nil if miss.
func (c *TweetCache) GetSearch(ctx context.Context, gen int64, q string) ([]dom.Tweet, error) {
	return c.get(ctx, searchKey(gen, q))
}

// SetSearch stores the search result in cache.
func (c *TweetCache) SetSearch(ctx context.Context, gen int64, q string, list []dom.Tweet) error {
	return c.set(ctx, searchKey(gen, q), list)
}

// InvalidateAll starts a new generation and removes the cached lists and
// searches. It returns the new generation.
func (c *TweetCache) InvalidateAll(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Incr(ctx, keyGen).Result()
	if err != nil {
		return 0, err
	}
	for _, pattern := range []string{keyList + "*", keySearch + "*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return gen, err
			}
		}
		if err := iter.Err(); err != nil {
			return gen, err
		}
	}
	return gen, nil
}

func (c *TweetCache) get(ctx context.Context, key string) ([]dom.Tweet, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := make([]dom.Tweet, 0)
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *TweetCache) set(ctx context.Context, key string, list []dom.Tweet) error {
	if list == nil {
		list = []dom.Tweet{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func listKey(gen int64) string {
	return keyList + strconv.FormatInt(gen, 10)
}

// searchKey folds case only: matching is case-insensitive but whitespace is significant.
func searchKey(gen int64, q string) string {
	return keySearch + strconv.FormatInt(gen, 10) + ":" + strings.ToLower(q)
}
