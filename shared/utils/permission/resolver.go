package permission

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tenantadmin-backend/shared/database/models"
	"tenantadmin-backend/shared/utils/cache"
)

// Resolved is the outcome of a permission lookup: the access matrix the
// user's role grants on one (service, feature) pair.
type Resolved struct {
	UserID  uuid.UUID     `json:"uuid"`
	Service string        `json:"service"`
	Feature string        `json:"feature"`
	Access  models.Access `json:"permission"`
}

// Resolve computes the effective access matrix for a user on a feature of a
// service within the given tenant context.
//
// The role matches when it is ACTIVE and either global (company_uuid IS NULL)
// or scoped to the caller's company. A user holds one active role, so the
// OR filter yields at most one row per (user, service, feature). No match
// returns (nil, nil): absence of permission is a result, not an error.
func Resolve(db *gorm.DB, userID uuid.UUID, company *uuid.UUID, serviceID uuid.UUID, feature string) (*Resolved, error) {
	cacheManager := cache.GetCacheManager()
	cacheKey := cache.MatrixKey(userID, company, serviceID, feature)
	if data, found := cacheManager.GetMatrix(cacheKey); found {
		return fromCache(userID, data)
	}

	var rows []struct {
		UUID    uuid.UUID     `gorm:"column:uuid"`
		Service string        `gorm:"column:service"`
		Feature string        `gorm:"column:feature"`
		Access  models.Access `gorm:"column:permission"`
	}

	err := db.Table("permissions p").
		Joins("JOIN roles r ON r.uuid = p.role_uuid").
		Joins("JOIN users u ON u.role_uuid = r.uuid").
		Joins("JOIN features f ON f.uuid = p.feature_uuid").
		Joins("JOIN services s ON s.uuid = f.service_uuid").
		Where("u.uuid = ?", userID).
		Where("r.status = ?", models.StatusActive).
		Where("(r.company_uuid IS NULL OR r.company_uuid = ?)", company).
		Where("s.uuid = ?", serviceID).
		Where("f.name = ?", feature).
		Select("u.uuid AS uuid, s.name AS service, f.name AS feature, p.permission AS permission").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		storeCache(cacheManager, cacheKey, nil)
		return nil, nil
	}

	resolved := &Resolved{
		UserID:  rows[0].UUID,
		Service: rows[0].Service,
		Feature: rows[0].Feature,
		Access:  rows[0].Access,
	}
	storeCache(cacheManager, cacheKey, resolved)

	return resolved, nil
}

func fromCache(userID uuid.UUID, data *cache.MatrixCacheData) (*Resolved, error) {
	if !data.Matched {
		return nil, nil
	}

	var access models.Access
	if err := json.Unmarshal(data.Access, &access); err != nil {
		return nil, err
	}

	return &Resolved{
		UserID:  userID,
		Service: data.Service,
		Feature: data.Feature,
		Access:  access,
	}, nil
}

func storeCache(cacheManager *cache.CacheManager, key string, resolved *Resolved) {
	if cacheManager == nil {
		return
	}

	data := &cache.MatrixCacheData{}
	if resolved != nil {
		raw, err := json.Marshal(resolved.Access)
		if err != nil {
			return
		}
		data.Matched = true
		data.Service = resolved.Service
		data.Feature = resolved.Feature
		data.Access = raw
	}

	// Best effort; a cold cache only costs a query.
	_ = cacheManager.SetMatrix(key, data)
}
