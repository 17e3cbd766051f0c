package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/database/models"
	"tenantadmin-backend/shared/utils/cache"
	"tenantadmin-backend/shared/utils/query"

	"tenantadmin-backend/admin-service/middleware"
)

type RoleHandler struct {
	db *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

// RoleRequest represents request body for creating a company role
type RoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AssignRoleRequest assigns one role to a set of users
type AssignRoleRequest struct {
	Role  uuid.UUID   `json:"role" binding:"required"`
	Users []uuid.UUID `json:"users" binding:"required,min=1"`
}

// PermissionUpdate is one cell group of a role's permission grid
type PermissionUpdate struct {
	Feature uuid.UUID     `json:"feature" binding:"required"`
	Access  models.Access `json:"access"`
}

// UpdatePermissionsRequest replaces a role's access on the listed features
type UpdatePermissionsRequest struct {
	Role        uuid.UUID          `json:"role" binding:"required"`
	Permissions []PermissionUpdate `json:"permissions" binding:"required,min=1"`
}

// CreateRole creates a role scoped to the caller's company
// @Summary Create a company role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param role body RoleRequest true "Role data"
// @Success 200 {object} map[string]interface{}
// @Router /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var exist int64
	err := h.db.Model(&models.Role{}).
		Where("name = ?", req.Name).
		Where("company_uuid = ?", *user.Company).
		Where("status <> ?", models.StatusArchived).
		Count(&exist).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if exist != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Role already exist"})
		return
	}

	role := models.Role{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.StatusActive,
		CompanyID:   user.Company,
		Template:    models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("role created: %s in company %s", role.Name, user.Company)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Create role completed.",
		"data":    gin.H{"uuid": role.ID},
	})
}

// ListSystemRoles lists the active built-in roles shared by every tenant
// @Summary List system roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /roles/system [get]
func (h *RoleHandler) ListSystemRoles(c *gin.Context) {
	var roles []models.Role
	err := h.db.Where("status = ?", models.StatusActive).
		Where("company_uuid IS NULL").
		Order("name ASC").
		Find(&roles).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": roles})
}

// ListCompanyRoles lists the caller company's own roles, paged
// @Summary List company roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /roles/company [get]
func (h *RoleHandler) ListCompanyRoles(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	params := query.ParsePagination(c)

	base := h.db.Model(&models.Role{}).
		Where("status = ?", models.StatusActive).
		Where("company_uuid = ?", *user.Company)

	var roles []models.Role
	if err := query.ApplyPagination(base.Order("name ASC"), params).Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&models.Role{}).
		Where("status = ?", models.StatusActive).
		Where("company_uuid = ?", *user.Company).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    query.ListResult{RowCount: count, Data: roles},
	})
}

// AssignRole assigns a role to users of the caller's company. Cached
// permission matrices of the affected users are dropped so the change is
// visible on their next request.
// @Summary Assign a role to users
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assign body AssignRoleRequest true "Assignment data"
// @Success 200 {object} map[string]interface{}
// @Router /roles/assign [patch]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var role models.Role
	err := h.db.Where("uuid = ?", req.Role).
		Where("status = ?", models.StatusActive).
		Where("(company_uuid IS NULL OR company_uuid = ?)", *user.Company).
		First(&role).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Role not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, target := range req.Users {
			if err := tx.Model(&models.User{}).
				Where("uuid = ?", target).
				Updates(map[string]interface{}{
					"role_uuid":  req.Role,
					"updated_by": user.UUID,
				}).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.CompanyUser{}).
				Where("user_uuid = ?", target).
				Where("company_uuid = ?", *user.Company).
				Where("status <> ?", models.StatusArchived).
				Updates(map[string]interface{}{
					"role_uuid":  req.Role,
					"updated_by": user.UUID,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		for _, target := range req.Users {
			if err := cm.InvalidateUser(target); err != nil {
				log.Printf("cache invalidation failed for user %s: %v", target, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Assign role completed."})
}

// PermissionGridRow is one feature row of a role's permission grid
type PermissionGridRow struct {
	FeatureUUID    uuid.UUID      `json:"featureUuid" gorm:"column:feature_uuid"`
	FeatureName    string         `json:"featureName" gorm:"column:feature_name"`
	PermissionUUID *uuid.UUID     `json:"permissionUuid" gorm:"column:permission_uuid"`
	Access         *models.Access `json:"access" gorm:"column:access"`
}

// GetPermissionGrid returns every admin feature with the role's current
// access on it. Features without a permission row come back with null access
// so the grid always shows the full feature set.
// @Summary Get a role's permission grid
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Role UUID"
// @Success 200 {object} map[string]interface{}
// @Router /roles/{uuid}/permissions [get]
func (h *RoleHandler) GetPermissionGrid(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	roleID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role ID"})
		return
	}

	// System roles are readable by every tenant; company roles only by their
	// own company.
	var role models.Role
	err = h.db.Where("uuid = ?", roleID).
		Where("status = ?", models.StatusActive).
		First(&role).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Role not found"})
		return
	}
	if !role.IsSystem() && *role.CompanyID != *user.Company {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Role not found"})
		return
	}

	var grid []PermissionGridRow
	err = h.db.Table("features f").
		Joins("JOIN services s ON s.uuid = f.service_uuid AND s.name = ?", models.ServiceAdmin).
		Joins("LEFT JOIN permissions p ON p.feature_uuid = f.uuid AND p.role_uuid = ? AND p.status = ?",
			roleID, models.StatusActive).
		Where("f.status = ?", models.StatusActive).
		Select("f.uuid AS feature_uuid, f.name AS feature_name, p.uuid AS permission_uuid, p.permission AS access").
		Order("f.name ASC").
		Scan(&grid).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": grid})
}

// UpdatePermissions replaces a role's access on the listed features. Rows are
// updated in place when they exist and inserted otherwise, inside one
// transaction. Every cached matrix is dropped afterwards.
// @Summary Update a role's permissions
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param permissions body UpdatePermissionsRequest true "Permission grid data"
// @Success 200 {object} map[string]interface{}
// @Router /roles/permissions [patch]
func (h *RoleHandler) UpdatePermissions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Only roles owned by the caller's company. System roles are shared by
	// every tenant and are never writable here.
	var role models.Role
	err := h.db.Where("uuid = ?", req.Role).
		Where("status = ?", models.StatusActive).
		Where("company_uuid = ?", *user.Company).
		First(&role).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Role not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, update := range req.Permissions {
			var existing models.Permission
			err := tx.Where("role_uuid = ?", req.Role).
				Where("feature_uuid = ?", update.Feature).
				First(&existing).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				if err := tx.Model(&models.Permission{}).
					Where("uuid = ?", existing.ID).
					Updates(map[string]interface{}{
						"permission": update.Access,
						"status":     models.StatusActive,
						"updated_by": user.UUID,
					}).Error; err != nil {
					return err
				}
				continue
			}

			permission := models.Permission{
				Access:    update.Access,
				Status:    models.StatusActive,
				RoleID:    req.Role,
				FeatureID: update.Feature,
				Template:  models.Template{CreatedBy: &user.UUID},
			}
			if err := tx.Create(&permission).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if cm := cache.GetCacheManager(); cm != nil {
		if err := cm.InvalidateAll(); err != nil {
			log.Printf("cache invalidation failed: %v", err)
		}
	}

	log.Printf("permissions updated for role %s", req.Role)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Update permissions completed."})
}
