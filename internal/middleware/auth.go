package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/auth"
	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/util"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "cardfeed_session"

// AuthMiddleware requires a valid session. The token is read from the
// Authorization header first and the session cookie second.
func AuthMiddleware(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			util.RespondUnauthorized(c, "missing session token")
			return
		}

		user, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			util.RespondWithAPIError(c, apierrors.FromError(err, "session"))
			return
		}

		util.SetUser(c, user)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid session is present and lets
// anonymous requests through untouched
func OptionalAuth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := sessionToken(c); token != "" {
			if user, err := validator.ValidateToken(c.Request.Context(), token); err == nil {
				util.SetUser(c, user)
			}
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
