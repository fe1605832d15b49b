package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-pipeline/internal/shared/server/respond"
)

const userIDKey = "userId"

// Identity reads the caller identity established by the upstream auth
// layer. Authenticated callers arrive with X-User-Id; anonymous callers
// may identify themselves with X-Guest-Id.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		if userID := strings.TrimSpace(c.GetHeader("X-User-Id")); userID != "" {
			c.Set(userIDKey, userID)
			c.Set("isGuest", false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, "guest:"+guestID)
		c.Set("isGuest", true)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the identity middleware.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}
