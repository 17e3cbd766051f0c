package database

import (
	"log"

	"github.com/google/uuid"

	"tenantadmin-backend/shared/config"
	"tenantadmin-backend/shared/database/models"
	utils "tenantadmin-backend/shared/utils/auth"
)

// SeedDatabase seeds the database with initial data: the Admin service, its
// features and the system "Admin" role with a full access matrix. System
// roles are only ever created here, never through the role endpoints.
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	service, created, err := seedAdminService()
	if err != nil {
		return err
	}

	featuresCreated, err := seedAdminFeatures(service)
	if err != nil {
		return err
	}

	permissionsCreated, err := seedSystemAdminRole(service)
	if err != nil {
		return err
	}

	if created || featuresCreated > 0 || permissionsCreated > 0 {
		log.Printf("✅ Database seeding completed (%d features, %d permissions created)",
			featuresCreated, permissionsCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

// CreateSuperAdmin creates an active user carrying the system Admin role.
// Used by cmd/seed for bootstrap; skipped when the email is already taken.
func CreateSuperAdmin(email, password, displayName string) error {
	emailHash := utils.HashEmail(email)

	var existing models.User
	if err := DB.Where("email_hash = ?", emailHash).First(&existing).Error; err == nil {
		log.Printf("Super admin already exists: %s", email)
		return nil
	}

	var role models.Role
	if err := DB.Where("name = ? AND company_uuid IS NULL", models.RoleAdmin).First(&role).Error; err != nil {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		DisplayName: &displayName,
		Email:       email,
		EmailHash:   emailHash,
		Password:    &hashed,
		AgreeTerms:  true,
		Status:      models.StatusActive,
		RoleID:      &role.ID,
	}
	if err := DB.Create(&user).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", email)
	return nil
}

// seedAdminService creates the Admin service row under the configured UUID so
// permission checks can scope to it without a lookup.
func seedAdminService() (*models.Service, bool, error) {
	cfg := config.GetConfig()

	serviceID, err := uuid.Parse(cfg.AdminServiceUUID)
	if err != nil {
		return nil, false, err
	}

	var service models.Service
	if err := DB.Where("uuid = ?", serviceID).First(&service).Error; err == nil {
		return &service, false, nil
	}

	description := "User and tenant administration"
	service = models.Service{
		Template:    models.Template{ID: serviceID},
		Name:        models.ServiceAdmin,
		Description: &description,
		Status:      models.StatusActive,
	}
	if err := DB.Create(&service).Error; err != nil {
		return nil, false, err
	}

	return &service, true, nil
}

// seedAdminFeatures creates the admin feature rows
func seedAdminFeatures(service *models.Service) (int, error) {
	created := 0
	for _, name := range models.AdminFeatures {
		var existing models.Feature
		result := DB.Where("service_uuid = ? AND name = ?", service.ID, name).First(&existing)
		if result.Error != nil {
			feature := models.Feature{
				Name:      name,
				Status:    models.StatusActive,
				ServiceID: service.ID,
			}
			if err := DB.Create(&feature).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// seedSystemAdminRole creates the global "Admin" role and grants it every
// action on every admin feature.
func seedSystemAdminRole(service *models.Service) (int, error) {
	var role models.Role
	result := DB.Where("name = ? AND company_uuid IS NULL", models.RoleAdmin).First(&role)
	if result.Error != nil {
		role = models.Role{
			Name:        models.RoleAdmin,
			Description: "System administrator role",
			Status:      models.StatusActive,
		}
		if err := DB.Create(&role).Error; err != nil {
			return 0, err
		}
	}

	var features []models.Feature
	if err := DB.Where("service_uuid = ?", service.ID).Find(&features).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, feature := range features {
		var existing models.Permission
		result := DB.Where("role_uuid = ? AND feature_uuid = ?", role.ID, feature.ID).First(&existing)
		if result.Error != nil {
			permission := models.Permission{
				Access:    models.Access{View: true, Insert: true, Update: true, Delete: true},
				Status:    models.StatusActive,
				RoleID:    role.ID,
				FeatureID: feature.ID,
			}
			if err := DB.Create(&permission).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}
