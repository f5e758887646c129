package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

const (
	userIDKey = "userID"

	// AccessTokenCookie is the cookie browsers send the access token in
	AccessTokenCookie = "accessToken"
)

// Authenticator resolves an access token to a user id
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// RequireAuth rejects requests without a valid access token and stores the
// caller's id in the context. The token comes from the Authorization header
// or, failing that, the accessToken cookie.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.Authenticate(tokenFrom(c))
		if err != nil {
			utils.HandleError(c, err)
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// UserID returns the authenticated caller, or "" on public routes
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
