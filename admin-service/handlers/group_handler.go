package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/database/models"
	"tenantadmin-backend/shared/utils/query"

	"tenantadmin-backend/admin-service/middleware"
)

type GroupHandler struct {
	db *gorm.DB
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

// GroupRequest represents request body for creating or updating a group
type GroupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// AddUserToGroupRequest adds one user into a group
type AddUserToGroupRequest struct {
	User uuid.UUID `json:"user" binding:"required"`
}

// CreateGroup creates a group in the caller's company
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body GroupRequest true "Group data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Group already exist"
// @Router /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var exist int64
	err := h.db.Model(&models.Group{}).
		Where("name = ?", req.Name).
		Where("company_uuid = ?", *user.Company).
		Where("status <> ?", models.StatusArchived).
		Count(&exist).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if exist != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Group already exist"})
		return
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.StatusActive,
		CompanyID:   *user.Company,
		Template:    models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("group created: %s in company %s", group.Name, user.Company)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Create group completed.",
		"data":    gin.H{"uuid": group.ID},
	})
}

// GroupRow is one group of the company with its member count
type GroupRow struct {
	UUID        uuid.UUID `json:"uuid" gorm:"column:uuid"`
	Name        string    `json:"name" gorm:"column:name"`
	Description *string   `json:"description" gorm:"column:description"`
	UserCount   int64     `json:"userCount" gorm:"column:user_count"`
}

// ListGroups lists the active groups of the caller's company with member
// counts
// @Summary List groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Router /groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	params := query.ParsePagination(c)

	var groups []GroupRow
	base := h.db.Table("groups g").
		Joins("LEFT JOIN user_group ug ON ug.group_uuid = g.uuid AND ug.status = ?", models.StatusActive).
		Where("g.company_uuid = ?", *user.Company).
		Where("g.status = ?", models.StatusActive).
		Select("g.uuid AS uuid, g.name AS name, g.description AS description, COUNT(ug.uuid) AS user_count").
		Group("g.uuid, g.name, g.description").
		Order("g.name ASC")

	if err := query.ApplyPagination(base, params).Scan(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&models.Group{}).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    query.ListResult{RowCount: count, Data: groups},
	})
}

// GroupMemberRow is one user inside (or outside) a group
type GroupMemberRow struct {
	UUID        uuid.UUID `json:"uuid" gorm:"column:uuid"`
	Email       string    `json:"email" gorm:"column:email"`
	DisplayName *string   `json:"displayName" gorm:"column:display_name"`
}

// ListGroupMembers lists the active members of a group
// @Summary List members of a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Group UUID"
// @Success 200 {object} map[string]interface{}
// @Router /groups/{uuid}/users [get]
func (h *GroupHandler) ListGroupMembers(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	groupID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid group ID"})
		return
	}

	var members []GroupMemberRow
	err = h.db.Table("user_group ug").
		Joins("JOIN users u ON u.uuid = ug.user_uuid").
		Joins("JOIN groups g ON g.uuid = ug.group_uuid").
		Where("ug.group_uuid = ?", groupID).
		Where("g.company_uuid = ?", *user.Company).
		Where("ug.status = ?", models.StatusActive).
		Where("u.status = ?", models.StatusActive).
		Select("u.uuid AS uuid, u.email AS email, u.display_name AS display_name").
		Order("u.email ASC").
		Scan(&members).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": members})
}

// ListUsersNotInGroup lists active company members who are not yet in the
// group, for the add-user picker.
// @Summary List company users outside a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Group UUID"
// @Success 200 {object} map[string]interface{}
// @Router /groups/{uuid}/users/available [get]
func (h *GroupHandler) ListUsersNotInGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	groupID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid group ID"})
		return
	}

	var available []GroupMemberRow
	err = h.db.Table("company_user cu").
		Joins("JOIN users u ON u.uuid = cu.user_uuid").
		Where("cu.company_uuid = ?", *user.Company).
		Where("cu.status = ?", models.StatusActive).
		Where("u.status = ?", models.StatusActive).
		Where("u.uuid NOT IN (?)", h.db.Table("user_group").
			Select("user_uuid").
			Where("group_uuid = ?", groupID).
			Where("status = ?", models.StatusActive)).
		Select("u.uuid AS uuid, u.email AS email, u.display_name AS display_name").
		Order("u.email ASC").
		Scan(&available).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": available})
}

// UpdateGroup updates a group's name and description
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Group UUID"
// @Param group body GroupRequest true "Group data"
// @Success 200 {object} map[string]interface{}
// @Router /groups/{uuid} [put]
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	groupID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid group ID"})
		return
	}

	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result := h.db.Model(&models.Group{}).
		Where("uuid = ?", groupID).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		Updates(map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"updated_by":  user.UUID,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Group not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Update group completed."})
}

// DeleteGroup archives a group and its membership rows
// @Summary Delete (archive) a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Group UUID"
// @Success 200 {object} map[string]interface{}
// @Router /groups/{uuid} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	groupID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid group ID"})
		return
	}

	var group models.Group
	err = h.db.Where("uuid = ?", groupID).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		First(&group).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Group not found"})
		return
	}

	now := time.Now()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Group{}).
			Where("uuid = ?", groupID).
			Updates(map[string]interface{}{
				"status":      models.StatusArchived,
				"archived_at": now,
				"archived_by": user.UUID,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.UserGroup{}).
			Where("group_uuid = ?", groupID).
			Updates(map[string]interface{}{
				"status":      models.StatusArchived,
				"archived_at": now,
				"archived_by": user.UUID,
			}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("group %s archived", groupID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Delete group completed."})
}

// AddUserToGroup adds an active company member into a group. An existing live
// row rejects the add.
// @Summary Add a user to a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Group UUID"
// @Param member body AddUserToGroupRequest true "User to add"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "User already in group"
// @Router /groups/{uuid}/users [post]
func (h *GroupHandler) AddUserToGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	groupID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid group ID"})
		return
	}

	var req AddUserToGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var group models.Group
	err = h.db.Where("uuid = ?", groupID).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		First(&group).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Group not found"})
		return
	}

	var member int64
	err = h.db.Model(&models.CompanyUser{}).
		Where("company_uuid = ?", *user.Company).
		Where("user_uuid = ?", req.User).
		Where("status = ?", models.StatusActive).
		Count(&member).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if member == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User is not a company member"})
		return
	}

	var exist int64
	err = h.db.Model(&models.UserGroup{}).
		Where("group_uuid = ?", groupID).
		Where("user_uuid = ?", req.User).
		Where("status = ?", models.StatusActive).
		Count(&exist).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if exist != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already in group"})
		return
	}

	membership := models.UserGroup{
		Status:   models.StatusActive,
		GroupID:  groupID,
		UserID:   req.User,
		Template: models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Add user to group completed."})
}
