package dto

import (
	"time"

	dom "github.com/swoyamsuwal/django-twitter/internal/domain"
)

// TweetRequest is the JSON body for create and update. Any client-supplied
// id, user or created_at is ignored. Lengths are checked after trimming.
type TweetRequest struct {
	Text  *string `json:"text" binding:"required,notblank,trimmax=240"`
	Image *string `json:"image" binding:"omitempty,trimmax=255"`
}

// TweetResponse mirrors every stored field; user is the author's id.
type TweetResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	User      int64     `json:"user"`
}

func NewTweetResponse(t dom.Tweet) TweetResponse {
	return TweetResponse{
		ID:        t.ID,
		Text:      t.Text,
		Image:     t.Image,
		CreatedAt: t.CreatedAt,
		User:      t.UserID,
	}
}

func NewTweetResponses(list []dom.Tweet) []TweetResponse {
	out := make([]TweetResponse, len(list))
	for i := range list {
		out[i] = NewTweetResponse(list[i])
	}
	return out
}
