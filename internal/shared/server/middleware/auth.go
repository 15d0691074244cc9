package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review-backend/internal/shared/server/respond"
)

const userIDKey = "userId"

// Auth resolves the authenticated recruiter from the identity collaborator.
// The identity service fronts this API and forwards the authenticated user
// in X-Recruiter-Id; this middleware only consumes that contract, it does
// not manage sessions itself.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		recruiterID := strings.TrimSpace(c.GetHeader("X-Recruiter-Id"))
		if recruiterID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, recruiterID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
