package permission

import (
	"tenantadmin-backend/shared/database/models"
)

// Descriptor names the feature and action an operation requires.
type Descriptor struct {
	Feature string
	Action  string
}

// Operations is the authorization table: every guarded endpoint is registered
// here under a stable operation name and checked by the permission middleware
// before its handler runs.
var Operations = map[string]Descriptor{
	"users.list":            {Feature: models.FeatureUser, Action: models.ActionView},
	"users.invite":          {Feature: models.FeatureUser, Action: models.ActionInsert},
	"users.invite-list":     {Feature: models.FeatureUser, Action: models.ActionView},
	"users.invite-activate": {Feature: models.FeatureUser, Action: models.ActionUpdate},
	"users.delete":          {Feature: models.FeatureUser, Action: models.ActionDelete},

	"company.update": {Feature: models.FeatureCompany, Action: models.ActionUpdate},
	"company.delete": {Feature: models.FeatureCompany, Action: models.ActionDelete},

	"roles.create":            {Feature: models.FeatureRole, Action: models.ActionInsert},
	"roles.list":              {Feature: models.FeatureRole, Action: models.ActionView},
	"roles.assign":            {Feature: models.FeatureRole, Action: models.ActionUpdate},
	"roles.permission-grid":   {Feature: models.FeatureRole, Action: models.ActionView},
	"roles.update-permission": {Feature: models.FeatureRole, Action: models.ActionUpdate},

	"permissions.create": {Feature: models.FeatureRole, Action: models.ActionUpdate},

	"groups.create":     {Feature: models.FeatureGroup, Action: models.ActionInsert},
	"groups.list":       {Feature: models.FeatureGroup, Action: models.ActionView},
	"groups.members":    {Feature: models.FeatureGroup, Action: models.ActionView},
	"groups.update":     {Feature: models.FeatureGroup, Action: models.ActionUpdate},
	"groups.delete":     {Feature: models.FeatureGroup, Action: models.ActionDelete},
	"groups.add-user":   {Feature: models.FeatureGroup, Action: models.ActionUpdate},

	"category.create": {Feature: models.FeatureCategory, Action: models.ActionInsert},
	"category.list":   {Feature: models.FeatureCategory, Action: models.ActionView},
}

// Lookup returns the descriptor registered for an operation.
func Lookup(operation string) (Descriptor, bool) {
	descriptor, ok := Operations[operation]
	return descriptor, ok
}
