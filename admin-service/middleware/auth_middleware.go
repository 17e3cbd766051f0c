package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tenantadmin-backend/shared/clients"
)

const contextUserKey = "currentUser"

// AuthMiddleware resolves the bearer credential through the external
// credential service and stores the identity in the request context. Every
// downstream guard and handler reads the (user, company) pair from here,
// never from the request body.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header is missing or malformed.",
			})
			c.Abort()
			return
		}

		user, err := clients.GetCredentialClient().Verify(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization fail",
			})
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity set by AuthMiddleware, or nil when the
// request never passed it.
func CurrentUser(c *gin.Context) *clients.CurrentUser {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}

	user, ok := value.(*clients.CurrentUser)
	if !ok {
		return nil
	}

	return user
}
