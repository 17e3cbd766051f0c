package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/database/models"
)

// ErrNoCompanySelected is returned when the caller's credential carries no
// company context. Guards fail fast on it instead of running the membership
// query.
var ErrNoCompanySelected = errors.New("no company selected")

// IsActive reports whether the user may act inside the company: true iff the
// company is ACTIVE and an ACTIVE membership row exists for the pair. A
// missing membership row is simply false, not an error.
func IsActive(db *gorm.DB, company *uuid.UUID, userID uuid.UUID) (bool, error) {
	if company == nil {
		return false, ErrNoCompanySelected
	}

	var count int64
	err := db.Table("company_user cu").
		Joins("JOIN company c ON c.uuid = cu.company_uuid").
		Where("cu.company_uuid = ?", *company).
		Where("cu.user_uuid = ?", userID).
		Where("cu.status = ?", models.StatusActive).
		Where("c.status = ?", models.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// HasActiveMembership checks only the membership row, ignoring the company
// status. Company switching uses it: the target company's own state is
// re-checked by the tenant guard on the next request.
func HasActiveMembership(db *gorm.DB, company uuid.UUID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.CompanyUser{}).
		Where("company_uuid = ?", company).
		Where("user_uuid = ?", userID).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
