package models

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle status values shared by every entity. Rows are never removed;
// deletion is a transition to ARCHIVED with archived_at/archived_by set.
const (
	StatusActive   = "ACTIVE"
	StatusPending  = "PENDING"
	StatusArchived = "ARCHIVED"
)

// Template holds the audit columns every table carries.
type Template struct {
	ID         uuid.UUID  `json:"uuid" gorm:"column:uuid;type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UpdatedBy  *uuid.UUID `json:"updated_by,omitempty" gorm:"type:uuid"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	ArchivedBy *uuid.UUID `json:"archived_by,omitempty" gorm:"type:uuid"`
}
