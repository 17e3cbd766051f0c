package models

import (
	"github.com/google/uuid"
)

// Service is a top-level product module (e.g. "Admin"). Actions the matrix
// understands and the admin feature names are fixed at seed time.
const (
	ActionView   = "view"
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const (
	ServiceAdmin = "Admin"

	FeatureCategory = "Category management"
	FeatureGroup    = "Group management"
	FeatureRole     = "Role management"
	FeatureUser     = "User management"
	FeatureCompany  = "Company management"
)

// AdminFeatures lists every feature the Admin service carries, in seed order.
var AdminFeatures = []string{
	FeatureCategory,
	FeatureGroup,
	FeatureRole,
	FeatureUser,
	FeatureCompany,
}

type Service struct {
	Template
	Name        string  `json:"name" gorm:"not null"`
	Description *string `json:"description"`
	Status      string  `json:"status" gorm:"default:'ACTIVE'"`
}

func (Service) TableName() string {
	return "services"
}

type Feature struct {
	Template
	Name      string    `json:"name" gorm:"not null"`
	Status    string    `json:"status" gorm:"default:'ACTIVE'"`
	ServiceID uuid.UUID `json:"service_uuid" gorm:"column:service_uuid;type:uuid;not null"`

	// Relations
	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (Feature) TableName() string {
	return "features"
}
