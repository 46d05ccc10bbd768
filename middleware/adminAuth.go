package middleware

import (
	"net/http"

	"resolvo/models"

	"github.com/gin-gonic/gin"
)

// AdminOnlyMiddleware rejects any authenticated account that is not an
// admin. Must run after JWTAuthMiddleware.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("accountRole")
		if role != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
