package models

import (
	"github.com/google/uuid"
)

// RoleAdmin is the system role granted to a company creator. It carries the
// full permission matrix on every admin feature.
const RoleAdmin = "Admin"

// Role is either a system role (CompanyID nil, visible to every tenant) or
// scoped to exactly one company. A role never moves between tenants.
type Role struct {
	Template
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"default:'ACTIVE'"`
	CompanyID   *uuid.UUID `json:"company_uuid" gorm:"column:company_uuid;type:uuid;index:roles_company_idx"`

	// Relations
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (Role) TableName() string {
	return "roles"
}

// IsSystem reports whether the role is global rather than tenant-private.
func (r *Role) IsSystem() bool {
	return r.CompanyID == nil
}
