package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tenantadmin-backend/shared/config"
	"tenantadmin-backend/shared/database"
	"tenantadmin-backend/shared/utils/permission"
)

// RequirePermission guards an endpoint with the authorization descriptor
// registered under the given operation name. The resolver is asked for the
// caller's matrix on the Admin service; an unmatched lookup or a false action
// bit both deny.
func RequirePermission(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization fail",
			})
			c.Abort()
			return
		}

		descriptor, ok := permission.Lookup(operation)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Unknown operation: " + operation,
			})
			c.Abort()
			return
		}

		serviceID, err := uuid.Parse(config.GetConfig().AdminServiceUUID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Invalid admin service configuration",
			})
			c.Abort()
			return
		}

		resolved, err := permission.Resolve(database.GetDB(), user.UUID, user.Company, serviceID, descriptor.Feature)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to check permissions",
			})
			c.Abort()
			return
		}

		if resolved == nil || !resolved.Access.Allows(descriptor.Action) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Not have permission to access.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
