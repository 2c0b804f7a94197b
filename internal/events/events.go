// Package events publishes domain events after successful writes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeTweetCreated   = "tweet.created"
	TypeTweetUpdated   = "tweet.updated"
	TypeTweetDeleted   = "tweet.deleted"
	TypeUserRegistered = "user.registered"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type tweetPayload struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	Text      string    `json:"text"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type tweetDeletedPayload struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func TweetCreated(t dom.Tweet) (Event, error) {
	return newEvent(TypeTweetCreated, tweetToPayload(t))
}

func TweetUpdated(t dom.Tweet) (Event, error) {
	return newEvent(TypeTweetUpdated, tweetToPayload(t))
}

func TweetDeleted(t dom.Tweet) (Event, error) {
	return newEvent(TypeTweetDeleted, tweetDeletedPayload{ID: t.ID, UserID: t.UserID})
}

// UserRegistered never carries the email or password hash.
func UserRegistered(u dom.User) (Event, error) {
	return newEvent(TypeUserRegistered, userPayload{ID: u.ID, Username: u.Username})
}

func newEvent(typ string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    b,
	}, nil
}

func tweetToPayload(t dom.Tweet) tweetPayload {
	return tweetPayload{
		ID:        t.ID,
		UserID:    t.UserID,
		Text:      t.Text,
		Image:     t.Image,
		CreatedAt: t.CreatedAt,
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
