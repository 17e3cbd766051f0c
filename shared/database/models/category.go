package models

import (
	"github.com/google/uuid"
)

type Category struct {
	Template
	Name      string     `json:"name" gorm:"not null"`
	Parent    *uuid.UUID `json:"parent" gorm:"type:uuid"`
	Status    string     `json:"status" gorm:"default:'ACTIVE'"`
	CompanyID uuid.UUID  `json:"company_uuid" gorm:"column:company_uuid;type:uuid;not null;index:category_company_idx"`

	// Relations
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (Category) TableName() string {
	return "category"
}
