package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/database/models"

	"tenantadmin-backend/admin-service/middleware"
)

type CategoryHandler struct {
	db *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// CategoryRequest represents request body for creating a category
type CategoryRequest struct {
	Name   string     `json:"name" binding:"required"`
	Parent *uuid.UUID `json:"parent"`
}

// CreateCategory creates a category in the caller's company, optionally under
// a parent category of the same company.
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CategoryRequest true "Category data"
// @Success 200 {object} map[string]interface{}
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.Parent != nil {
		var parent int64
		err := h.db.Model(&models.Category{}).
			Where("uuid = ?", *req.Parent).
			Where("company_uuid = ?", *user.Company).
			Where("status = ?", models.StatusActive).
			Count(&parent).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		if parent == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Parent category not found"})
			return
		}
	}

	category := models.Category{
		Name:      req.Name,
		Parent:    req.Parent,
		Status:    models.StatusActive,
		CompanyID: *user.Company,
		Template:  models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Create category completed.",
		"data":    gin.H{"uuid": category.ID},
	})
}

// ListCategories lists the active categories of the caller's company. The
// parent field lets clients rebuild the tree.
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var categories []models.Category
	err := h.db.Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}
