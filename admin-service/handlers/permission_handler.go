package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/config"
	"tenantadmin-backend/shared/database/models"
	"tenantadmin-backend/shared/utils/cache"
	"tenantadmin-backend/shared/utils/permission"

	"tenantadmin-backend/admin-service/middleware"
)

type PermissionHandler struct {
	db *gorm.DB
}

func NewPermissionHandler(db *gorm.DB) *PermissionHandler {
	return &PermissionHandler{db: db}
}

// CreatePermissionRequest represents request body for granting a role access
// on a feature
type CreatePermissionRequest struct {
	Role    uuid.UUID     `json:"role" binding:"required"`
	Feature uuid.UUID     `json:"feature" binding:"required"`
	Access  models.Access `json:"access"`
}

// ResolveRequest names the feature whose matrix the caller wants
type ResolveRequest struct {
	Feature string `json:"feature" binding:"required"`
}

// CreatePermission grants a role an access matrix on a feature. A live
// permission row for the same pair rejects the grant.
// @Summary Create a permission
// @Tags permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param permission body CreatePermissionRequest true "Permission data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Permission already exist"
// @Router /permissions [post]
func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var exist int64
	err := h.db.Model(&models.Permission{}).
		Where("role_uuid = ?", req.Role).
		Where("feature_uuid = ?", req.Feature).
		Where("status <> ?", models.StatusArchived).
		Count(&exist).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if exist != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Permission already exist"})
		return
	}

	perm := models.Permission{
		Access:    req.Access,
		Status:    models.StatusActive,
		RoleID:    req.Role,
		FeatureID: req.Feature,
		Template:  models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&perm).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		_ = cm.InvalidateAll()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Create permission completed.",
		"data":    gin.H{"uuid": perm.ID},
	})
}

// ResolveOwn resolves the caller's effective access matrix on one admin
// feature within their current company context. An unmatched feature returns
// success with null data rather than an error.
// @Summary Resolve own access on a feature
// @Tags permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resolve body ResolveRequest true "Feature name"
// @Success 200 {object} map[string]interface{}
// @Router /permissions [patch]
func (h *PermissionHandler) ResolveOwn(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	serviceID, err := uuid.Parse(config.GetConfig().AdminServiceUUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Admin service is not configured"})
		return
	}

	resolved, err := permission.Resolve(h.db, user.UUID, user.Company, serviceID, req.Feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if resolved == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resolved})
}

// UserFeatureAccess is one feature the caller can reach with its matrix
type UserFeatureAccess struct {
	Feature string        `json:"feature" gorm:"column:feature"`
	Access  models.Access `json:"access" gorm:"column:access"`
}

// GetUserPermissions lists every admin feature the caller's role reaches in
// the current company, with the access matrix per feature. The join mirrors
// the single-feature resolver without the feature filter.
// @Summary List own feature access
// @Tags permissions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /permissions/user [get]
func (h *PermissionHandler) GetUserPermissions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	serviceID, err := uuid.Parse(config.GetConfig().AdminServiceUUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Admin service is not configured"})
		return
	}

	var access []UserFeatureAccess
	err = h.db.Table("permissions p").
		Joins("JOIN roles r ON r.uuid = p.role_uuid").
		Joins("JOIN users u ON u.role_uuid = r.uuid").
		Joins("JOIN features f ON f.uuid = p.feature_uuid").
		Joins("JOIN services s ON s.uuid = f.service_uuid").
		Where("u.uuid = ?", user.UUID).
		Where("r.status = ?", models.StatusActive).
		Where("(r.company_uuid IS NULL OR r.company_uuid = ?)", user.Company).
		Where("p.status = ?", models.StatusActive).
		Where("s.uuid = ?", serviceID).
		Select("f.name AS feature, p.permission AS access").
		Order("f.name ASC").
		Scan(&access).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": access})
}
