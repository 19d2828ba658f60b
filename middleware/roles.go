package middleware

import (
	"edunexa-backend/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests whose authenticated role is not in the
// allowed set. Must run after RequireAuth.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}

		utils.RespondWithForbidden(c, "Access denied")
		c.Abort()
	}
}
