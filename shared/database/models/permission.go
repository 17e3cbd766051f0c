package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Access is the per-feature permission matrix stored as jsonb.
type Access struct {
	View   bool `json:"view"`
	Insert bool `json:"insert"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// Allows reports whether the named action is granted.
func (a Access) Allows(action string) bool {
	switch action {
	case ActionView:
		return a.View
	case ActionInsert:
		return a.Insert
	case ActionUpdate:
		return a.Update
	case ActionDelete:
		return a.Delete
	}
	return false
}

func (a Access) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Access) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = Access{}
		return nil
	}
	return fmt.Errorf("unsupported type %T for Access", value)
}

// Permission grants a role an access matrix on one feature. The row is
// meaningful only while its role and feature are not archived.
type Permission struct {
	Template
	Access    Access    `json:"permission" gorm:"column:permission;type:jsonb;not null"`
	Status    string    `json:"status" gorm:"default:'ACTIVE'"`
	RoleID    uuid.UUID `json:"role_uuid" gorm:"column:role_uuid;type:uuid;not null;index:permissions_role_idx"`
	FeatureID uuid.UUID `json:"feature_uuid" gorm:"column:feature_uuid;type:uuid;not null"`

	// Relations
	Role    Role    `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Feature Feature `json:"feature,omitempty" gorm:"foreignKey:FeatureID"`
}

func (Permission) TableName() string {
	return "permissions"
}
