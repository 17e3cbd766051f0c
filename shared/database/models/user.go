package models

import (
	"github.com/google/uuid"
)

type User struct {
	Template
	DisplayName *string    `json:"display_name" gorm:"size:200"`
	Email       string     `json:"email"`
	EmailHash   string     `json:"-" gorm:"size:64;index:users_email_hash_idx"`
	Password    *string    `json:"-"`
	AgreeTerms  bool       `json:"agree_terms" gorm:"default:false"`
	Status      string     `json:"status" gorm:"default:'ACTIVE'"`
	RoleID      *uuid.UUID `json:"role_uuid" gorm:"column:role_uuid;type:uuid"`

	// Relations
	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (User) TableName() string {
	return "users"
}
