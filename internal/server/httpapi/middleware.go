package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/lifedash/internal/server/auth"
)

// contextUserID is the gin context key carrying the authenticated user id.
const contextUserID = "userID"

// authRequired verifies the bearer token and installs the user id into the
// request context. Used on endpoints that mint presigned storage URLs.
func (h *Handlers) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization required"})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, h.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(contextUserID, userID)
		c.Next()
	}
}
