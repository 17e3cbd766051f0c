package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin-backend/shared/database"
	"tenantadmin-backend/shared/utils/tenant"
)

// CompanyGuard gates tenant-scoped endpoints: the credential must carry a
// company and the caller must be an active member of an active company.
func CompanyGuard() gin.HandlerFunc {
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

		canAccess, err := tenant.IsActive(database.GetDB(), user.Company, user.UUID)
		if err != nil {
			if errors.Is(err, tenant.ErrNoCompanySelected) {
				c.JSON(http.StatusNotAcceptable, gin.H{
					"success": false,
					"message": "No company selected. Please select a company to proceed.",
				})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to verify company access",
			})
			c.Abort()
			return
		}

		if !canAccess {
			log.Printf("fail to access company %s for user %s", user.Company, user.UUID)
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Your company is not active. Please contact administrator.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
