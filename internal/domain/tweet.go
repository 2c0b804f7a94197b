package domain

import "time"

// Tweet is a short text post. UserID always references an existing User;
// CreatedAt is assigned by the store on insert and never changes.
type Tweet struct {
	ID        int64
	UserID    int64
	Text      string
	Image     *string
	CreatedAt time.Time
}

// OwnedBy reports whether userID authored the tweet.
func (t Tweet) OwnedBy(userID int64) bool {
	return userID != 0 && t.UserID == userID
}
