package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/util"
)

// RequireAdmin ensures the request carries an authenticated admin.
// It must run after AuthMiddleware, which loads the user onto the context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := util.CurrentUser(c)
		if !ok {
			util.RespondUnauthorized(c)
			return
		}

		if !user.IsAdmin() {
			util.RespondForbidden(c, "admin access required")
			return
		}

		c.Next()
	}
}
