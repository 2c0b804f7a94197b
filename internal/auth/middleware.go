package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextKeySession = "session"

// SessionFromContext returns the session attached by LoadSession. Anonymous if none.
func SessionFromContext(c *gin.Context) Session {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return Session{}
	}
	s, ok := v.(Session)
	if !ok {
		return Session{}
	}
	return s
}

// WithSession attaches s to the request context.
func WithSession(c *gin.Context, s Session) {
	c.Set(contextKeySession, s)
}

// LoadSession resolves the session cookie and attaches the result to every
// request. Missing, unknown or expired sessions leave the caller anonymous.
// A Redis failure is logged and the caller treated as anonymous.
func LoadSession(sessions *Store, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := Session{}
		if id, err := c.Cookie(cookieName); err == nil && id != "" {
			loaded, ok, err := sessions.Get(c.Request.Context(), id)
			switch {
			case err != nil:
				log.Warn("load session", zap.Error(err))
			case ok:
				sess = loaded
			}
		}
		WithSession(c, sess)
		c.Next()
	}
}

// RequireSession responds with 401 unless LoadSession attached an authenticated session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFromContext(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		c.Next()
	}
}
