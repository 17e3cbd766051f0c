package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/clients"
	"tenantadmin-backend/shared/database/models"
	"tenantadmin-backend/shared/utils/tenant"

	"tenantadmin-backend/admin-service/middleware"
)

type CompanyHandler struct {
	db          *gorm.DB
	credentials *clients.CredentialClient
}

func NewCompanyHandler(db *gorm.DB, credentials *clients.CredentialClient) *CompanyHandler {
	return &CompanyHandler{db: db, credentials: credentials}
}

// CompanyRequest represents request body for creating or updating a company
type CompanyRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Telephone   *string `json:"telephone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Website     *string `json:"website"`
}

// CreateCompany creates a company and makes the caller its first active
// member with the system Admin role. Any authenticated user may create a
// company; the membership is what grants them administration rights in it.
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param company body CompanyRequest true "Company data"
// @Success 200 {object} map[string]interface{}
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var adminRole models.Role
	err := h.db.Where("name = ? AND company_uuid IS NULL AND status = ?",
		models.RoleAdmin, models.StatusActive).First(&adminRole).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Admin role is not provisioned"})
		return
	}

	company := models.Company{
		Name:        req.Name,
		Description: req.Description,
		Telephone:   req.Telephone,
		Email:       req.Email,
		Address:     req.Address,
		Website:     req.Website,
		Status:      models.StatusActive,
		Template:    models.Template{CreatedBy: &user.UUID},
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}

		membership := models.CompanyUser{
			Status:    models.StatusActive,
			CompanyID: company.ID,
			UserID:    user.UUID,
			RoleID:    &adminRole.ID,
			Template:  models.Template{CreatedBy: &user.UUID},
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		// The resolver matches on users.role_uuid, so a creator without a
		// role would have no permissions in their own company.
		return tx.Model(&models.User{}).
			Where("uuid = ?", user.UUID).
			Where("role_uuid IS NULL").
			Update("role_uuid", adminRole.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("company created: %s by %s", company.Name, user.UUID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Create company completed.",
		"data":    gin.H{"uuid": company.ID},
	})
}

// UpdateCompany updates the caller's current company profile
// @Summary Update the current company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param company body CompanyRequest true "Company data"
// @Success 200 {object} map[string]interface{}
// @Router /companies [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result := h.db.Model(&models.Company{}).
		Where("uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		Updates(map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"telephone":   req.Telephone,
			"email":       req.Email,
			"address":     req.Address,
			"website":     req.Website,
			"updated_by":  user.UUID,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Company not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Update company completed."})
}

// DeleteCompany archives the caller's current company together with every
// membership row in it.
// @Summary Delete (archive) the current company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /companies [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	now := time.Now()
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Company{}).
			Where("uuid = ?", *user.Company).
			Updates(map[string]interface{}{
				"status":      models.StatusArchived,
				"archived_at": now,
				"archived_by": user.UUID,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.CompanyUser{}).
			Where("company_uuid = ?", *user.Company).
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

	log.Printf("company %s archived by %s", user.Company, user.UUID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Delete company completed."})
}

// SwitchCompany rewrites the caller's credential with another company claim.
// The caller must hold an active membership in the target company; the
// credential service mints the replacement token.
// @Summary Switch the active company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Company UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "No permission in company"
// @Router /companies/switch/{uuid} [patch]
func (h *CompanyHandler) SwitchCompany(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	companyID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid company ID"})
		return
	}

	ok, err := tenant.HasActiveMembership(h.db, companyID, user.UUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No permission in company"})
		return
	}

	token, err := h.credentials.AddFields(c.GetHeader("Authorization"), clients.AddFieldsRequest{
		Company: companyID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Echo the context the reissued token carries so clients don't have to
	// decode it themselves.
	context, err := clients.TokenClaims(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("user %s switched to company %s", user.UUID, companyID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    token,
		"context": context,
	})
}

// CompanyMembershipRow is one company the caller belongs to
type CompanyMembershipRow struct {
	UUID   uuid.UUID `json:"uuid" gorm:"column:uuid"`
	Name   string    `json:"name" gorm:"column:name"`
	Status string    `json:"status" gorm:"column:status"`
}

// ListMyCompanies lists the companies the caller holds a live membership in
// @Summary List companies of the caller
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /companies [get]
func (h *CompanyHandler) ListMyCompanies(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	var companies []CompanyMembershipRow
	err := h.db.Table("company_user cu").
		Joins("JOIN company c ON c.uuid = cu.company_uuid").
		Where("cu.user_uuid = ?", user.UUID).
		Where("cu.status <> ?", models.StatusArchived).
		Where("c.status <> ?", models.StatusArchived).
		Select("c.uuid AS uuid, c.name AS name, cu.status AS status").
		Order("c.name ASC").
		Scan(&companies).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": companies})
}

// IsActive reports whether the caller's current company is active. A missing
// or inactive company yields 410 so clients drop the stale selection.
// @Summary Check the current company is active
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Router /companies/is-active [get]
func (h *CompanyHandler) IsActive(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	active, err := tenant.IsActive(h.db, user.Company, user.UUID)
	if err != nil && err != tenant.ErrNoCompanySelected {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if err == tenant.ErrNoCompanySelected || !active {
		c.JSON(http.StatusGone, gin.H{"success": false, "message": "Company is not active"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Company is active"})
}

// ListServices lists the registered services
// @Summary List services
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /services [get]
func (h *CompanyHandler) ListServices(c *gin.Context) {
	var services []models.Service
	err := h.db.Where("status = ?", models.StatusActive).
		Order("name ASC").
		Find(&services).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": services})
}

// ListFeatures lists the features of one service
// @Summary List features of a service
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Service UUID"
// @Success 200 {object} map[string]interface{}
// @Router /services/{uuid}/features [get]
func (h *CompanyHandler) ListFeatures(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid service ID"})
		return
	}

	var features []models.Feature
	err = h.db.Where("service_uuid = ?", serviceID).
		Where("status = ?", models.StatusActive).
		Order("name ASC").
		Find(&features).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": features})
}
