package util

import (
	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/models"
)

// Context keys written by the auth and request id middleware
const (
	ContextUserKey      = "user"
	ContextUserIDKey    = "user_id"
	ContextRequestIDKey = "request_id"
)

// RequestID returns the current request's id
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}

// SetUser stores the authenticated user on the request context
func SetUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
}

// GetUserFromContext extracts the authenticated user from the Gin context.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		RespondUnauthorized(c)
		return nil, false
	}
	return user, true
}

// CurrentUser returns the authenticated user without writing a response
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
