package models

import (
	"github.com/google/uuid"
)

type Company struct {
	Template
	Name        string  `json:"name" gorm:"not null"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	Email       *string `json:"email"`
	Telephone   *string `json:"telephone"`
	Website     *string `json:"website"`
	Logo        *string `json:"logo"`
	Description *string `json:"description"`
	Status      string  `json:"status" gorm:"default:'ACTIVE'"`
}

func (Company) TableName() string {
	return "company"
}

// CompanyUser links a user to a tenant. Its status tracks the membership
// lifecycle independently of the user: PENDING invite, ACTIVE member,
// ARCHIVED removed. Rows are never deleted.
type CompanyUser struct {
	Template
	Status    string     `json:"status" gorm:"default:'ACTIVE';index:company_user_active_idx"`
	CompanyID uuid.UUID  `json:"company_uuid" gorm:"column:company_uuid;type:uuid;not null;index:company_user_company_idx"`
	UserID    uuid.UUID  `json:"user_uuid" gorm:"column:user_uuid;type:uuid;not null"`
	RoleID    *uuid.UUID `json:"role_uuid" gorm:"column:role_uuid;type:uuid"`

	// Relations
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role    *Role   `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (CompanyUser) TableName() string {
	return "company_user"
}
