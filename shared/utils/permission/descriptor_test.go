package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantadmin-backend/shared/database/models"
)

func TestLookupKnownOperations(t *testing.T) {
	descriptor, ok := Lookup("users.invite")
	require.True(t, ok)
	assert.Equal(t, models.FeatureUser, descriptor.Feature)
	assert.Equal(t, models.ActionInsert, descriptor.Action)

	descriptor, ok = Lookup("company.delete")
	require.True(t, ok)
	assert.Equal(t, models.FeatureCompany, descriptor.Feature)
	assert.Equal(t, models.ActionDelete, descriptor.Action)
}

func TestLookupUnknownOperation(t *testing.T) {
	_, ok := Lookup("users.frobnicate")
	assert.False(t, ok)
}

func TestOperationsReferenceSeededFeatures(t *testing.T) {
	seeded := make(map[string]bool, len(models.AdminFeatures))
	for _, name := range models.AdminFeatures {
		seeded[name] = true
	}

	for operation, descriptor := range Operations {
		assert.True(t, seeded[descriptor.Feature],
			"operation %s references unseeded feature %q", operation, descriptor.Feature)
	}
}

func TestOperationsUseKnownActions(t *testing.T) {
	known := map[string]bool{
		models.ActionView:   true,
		models.ActionInsert: true,
		models.ActionUpdate: true,
		models.ActionDelete: true,
	}

	for operation, descriptor := range Operations {
		assert.True(t, known[descriptor.Action],
			"operation %s uses unknown action %q", operation, descriptor.Action)
	}
}
