package models

import (
	"github.com/google/uuid"
)

// Group is a tenant-scoped collection of users.
type Group struct {
	Template
	Name        string  `json:"name" gorm:"not null"`
	Description *string `json:"description"`
	Status      string  `json:"status" gorm:"default:'ACTIVE'"`
	CompanyID   uuid.UUID `json:"company_uuid" gorm:"column:company_uuid;type:uuid;not null;index:groups_company_idx"`

	// Relations
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (Group) TableName() string {
	return "groups"
}

type UserGroup struct {
	Template
	Status  string    `json:"status" gorm:"default:'ACTIVE'"`
	UserID  uuid.UUID `json:"user_uuid" gorm:"column:user_uuid;type:uuid;not null"`
	GroupID uuid.UUID `json:"group_uuid" gorm:"column:group_uuid;type:uuid;not null;index:user_group_group_idx"`

	// Relations
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

func (UserGroup) TableName() string {
	return "user_group"
}
