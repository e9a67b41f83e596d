package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_blog/internal/feature/auth/domain"
)

// ContextUserID is the gin context key holding the logged-in user's ID.
const ContextUserID = "userID"

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

// Authenticator resolves a session ID to a user ID.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (uint, error)
}

// AuthRequired returns a Gin middleware that lets only requests with a valid
// session through. Others are redirected to the login page.
func AuthRequired(cookies *Cookies, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := cookies.SessionID(c.Request)
		userID, err := auth.Authenticate(c.Request.Context(), sid)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthenticated) {
				slog.Error("session lookup failed", "error", err, "path", c.FullPath())
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the user ID set by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
