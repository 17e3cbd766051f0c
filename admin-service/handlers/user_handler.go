package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/clients"
	"tenantadmin-backend/shared/database/models"
	utils "tenantadmin-backend/shared/utils/auth"
	"tenantadmin-backend/shared/utils/query"

	"tenantadmin-backend/admin-service/middleware"
)

type UserHandler struct {
	db          *gorm.DB
	credentials *clients.CredentialClient
}

func NewUserHandler(db *gorm.DB, credentials *clients.CredentialClient) *UserHandler {
	return &UserHandler{db: db, credentials: credentials}
}

// RegisterRequest represents request body for self-service registration
type RegisterRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	DisplayName   *string `json:"displayName"`
	TermCondition bool    `json:"termCondition"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginProfile is the identity block returned on successful login
type LoginProfile struct {
	UUID        uuid.UUID  `json:"uuid"`
	Company     *uuid.UUID `json:"company"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"displayName"`
}

// InviteRequest represents request body for inviting a user into the
// caller's company
type InviteRequest struct {
	Email string    `json:"email" binding:"required,email"`
	Role  uuid.UUID `json:"role" binding:"required"`
}

// Register creates a new account, or promotes a pending invited account in
// place when the email matches one. Duplicate active accounts are rejected.
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "Registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "User already exist"
// @Router /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	emailHash := utils.HashEmail(req.Email)

	var existing models.User
	err := h.db.Where("email_hash = ? AND status = ?", emailHash, models.StatusActive).
		First(&existing).Error
	if err == nil {
		log.Printf("user already exist: %s", req.Email)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exist."})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	password, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not hash password"})
		return
	}

	// An invited user completing registration takes over the pending row
	// instead of creating a duplicate; the membership stays pending until an
	// administrator activates it.
	var pending models.User
	err = h.db.Where("email_hash = ? AND status = ?", emailHash, models.StatusPending).
		First(&pending).Error
	if err == nil {
		updates := map[string]interface{}{
			"password":     password,
			"display_name": req.DisplayName,
			"agree_terms":  req.TermCondition,
			"status":       models.StatusActive,
		}
		if err := h.db.Model(&models.User{}).Where("uuid = ?", pending.ID).
			Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		log.Printf("register completed for invited user: %s", req.Email)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Register completed."})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	user := models.User{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		EmailHash:   emailHash,
		Password:    &password,
		AgreeTerms:  req.TermCondition,
		Status:      models.StatusActive,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("register completed: %s", req.Email)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Register completed."})
}

// Login authenticates a user and returns a credential minted by the external
// credential service. The company claim is the user's first membership, or
// null when they have not joined any company yet.
// @Summary User login
// @Tags users
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Username or password incorrect"
// @Router /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	err := h.db.Where("email_hash = ? AND status = ?", utils.HashEmail(req.Email), models.StatusActive).
		First(&user).Error
	if err != nil || user.Password == nil || !utils.CheckPasswordHash(req.Password, *user.Password) {
		log.Printf("login fail: %s", req.Email)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username or password incorrect."})
		return
	}

	var company *uuid.UUID
	var membership models.CompanyUser
	if err := h.db.Where("user_uuid = ?", user.ID).First(&membership).Error; err == nil {
		company = &membership.CompanyID
	}

	token, err := h.credentials.Sign(clients.SignRequest{UUID: user.ID, Company: company})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("login completed: %s", req.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    token,
		"profile": LoginProfile{
			UUID:        user.ID,
			Company:     company,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
	})
}

// InviteUser invites an email address into the caller's company: a pending
// user row (no password) plus a pending membership. A non-archived existing
// membership for that email rejects the invite.
// @Summary Invite a user into the company
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invite body InviteRequest true "Invite data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Invite already exist"
// @Router /users/invite [post]
func (h *UserHandler) InviteUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	emailHash := utils.HashEmail(req.Email)

	var existInvite int64
	err := h.db.Table("company_user cu").
		Joins("JOIN users u ON u.uuid = cu.user_uuid").
		Where("cu.company_uuid = ?", *user.Company).
		Where("u.email_hash = ?", emailHash).
		Where("cu.status <> ?", models.StatusArchived).
		Count(&existInvite).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if existInvite != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invite already exist"})
		return
	}

	invited := models.User{
		Email:     req.Email,
		EmailHash: emailHash,
		Status:    models.StatusPending,
		RoleID:    &req.Role,
		Template:  models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&invited).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	membership := models.CompanyUser{
		Status:    models.StatusPending,
		CompanyID: *user.Company,
		UserID:    invited.ID,
		RoleID:    &req.Role,
		Template:  models.Template{CreatedBy: &user.UUID},
	}
	if err := h.db.Create(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	log.Printf("invite completed for %s into company %s", req.Email, user.Company)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invite user completed."})
}

// InviteRow is one pending invite in the company
type InviteRow struct {
	UUID      uuid.UUID `json:"uuid" gorm:"column:uuid"`
	Email     string    `json:"email" gorm:"column:email"`
	GroupName *string   `json:"groupName" gorm:"column:group_name"`
	Status    string    `json:"status" gorm:"column:status"`
}

// ListInvites lists pending invites of the caller's company
// @Summary List pending invites
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Router /users/invite [get]
func (h *UserHandler) ListInvites(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	params := query.ParsePagination(c)

	var invites []InviteRow
	base := h.db.Table("company_user cu").
		Joins("JOIN users u ON u.uuid = cu.user_uuid").
		Joins("LEFT JOIN user_group ug ON ug.user_uuid = u.uuid").
		Joins("LEFT JOIN groups g ON g.uuid = ug.group_uuid").
		Where("cu.company_uuid = ?", *user.Company).
		Where("cu.status = ?", models.StatusPending)

	err := query.ApplyPagination(base.
		Select("u.uuid AS uuid, u.email AS email, g.name AS group_name, u.status AS status"), params).
		Scan(&invites).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&models.CompanyUser{}).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusPending).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invite user in company",
		"data":    query.ListResult{RowCount: count, Data: invites},
	})
}

// ActivateInvite promotes a pending membership to active once the invited
// user has completed registration.
// @Summary Activate a pending membership
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Invited user UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /users/invite/{uuid} [patch]
func (h *UserHandler) ActivateInvite(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	targetID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	result := h.db.Model(&models.CompanyUser{}).
		Where("company_uuid = ?", *user.Company).
		Where("user_uuid = ?", targetID).
		Where("status = ?", models.StatusPending).
		Updates(map[string]interface{}{
			"status":     models.StatusActive,
			"updated_by": user.UUID,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": result.Error.Error()})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No pending invite for user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Activate membership completed."})
}

// CompanyUserRow is one active member of the company
type CompanyUserRow struct {
	UUID        uuid.UUID `json:"uuid" gorm:"column:uuid"`
	Email       string    `json:"email" gorm:"column:email"`
	DisplayName *string   `json:"displayName" gorm:"column:display_name"`
	GroupName   *string   `json:"groupName" gorm:"column:group_name"`
	RoleName    *string   `json:"roleName" gorm:"column:role_name"`
}

// ListUsers lists the active members of the caller's company together with
// their groups and role.
// @Summary List users in the company
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{}
// @Router /users [patch]
func (h *UserHandler) ListUsers(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	params := query.ParsePagination(c)

	var members []CompanyUserRow
	base := h.db.Table("company_user cu").
		Joins("JOIN users u ON u.uuid = cu.user_uuid").
		Joins("LEFT JOIN user_group ug ON ug.user_uuid = u.uuid AND ug.status = ?", models.StatusActive).
		Joins("LEFT JOIN groups g ON g.uuid = ug.group_uuid").
		Joins("LEFT JOIN roles r ON r.uuid = u.role_uuid").
		Where("cu.company_uuid = ?", *user.Company).
		Where("cu.status = ?", models.StatusActive).
		Where("u.status = ?", models.StatusActive).
		Select("u.uuid AS uuid, u.email AS email, u.display_name AS display_name, " +
			"string_agg(g.name, ',') AS group_name, r.name AS role_name").
		Group("u.uuid, u.email, u.display_name, r.name, u.created_at").
		Order("u.created_at DESC")

	if err := query.ApplyPagination(base, params).Scan(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&models.CompanyUser{}).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "List user in company",
		"rowCount": count,
		"data":     members,
	})
}

// GetProfile returns the calling user's profile with the company context of
// their credential.
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization fail"})
		return
	}

	var profile models.User
	err := h.db.Where("uuid = ? AND status = ?", user.UUID, models.StatusActive).
		First(&profile).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"uuid":             profile.ID,
			"email":            profile.Email,
			"displayName":      profile.DisplayName,
			"agreeTermsPolicy": profile.AgreeTerms,
			"createdAt":        profile.CreatedAt,
			"company":          user.Company,
		},
	})
}

// DeleteUser archives a user and every membership row they hold, atomically:
// either both transitions commit or neither does.
// @Summary Delete (archive) a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "User UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /users/{uuid} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Company == nil {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"message": "No company selected. Please select a company to proceed.",
		})
		return
	}

	targetID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var membership models.CompanyUser
	err = h.db.Where("user_uuid = ?", targetID).
		Where("company_uuid = ?", *user.Company).
		Where("status = ?", models.StatusActive).
		First(&membership).Error
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "can't delete user from company"})
		return
	}

	now := time.Now()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("uuid = ?", targetID).
			Updates(map[string]interface{}{
				"status":      models.StatusArchived,
				"archived_at": now,
				"archived_by": user.UUID,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.CompanyUser{}).
			Where("user_uuid = ?", targetID).
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

	log.Printf("delete user %s completed", targetID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Delete user completed."})
}
