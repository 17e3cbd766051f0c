package cache

import (
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewCacheManager(client), server
}

func TestMatrixKey(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	companyID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	serviceID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	key := MatrixKey(userID, &companyID, serviceID, "User management")
	assert.Equal(t,
		"perm:user:11111111-1111-1111-1111-111111111111"+
			":company:22222222-2222-2222-2222-222222222222"+
			":svc:33333333-3333-3333-3333-333333333333"+
			":feat:User management",
		key)

	// A credential without a company context gets its own key space.
	key = MatrixKey(userID, nil, serviceID, "User management")
	assert.Contains(t, key, ":company:none:")
}

func TestSetAndGetMatrix(t *testing.T) {
	cm, _ := newTestCache(t)
	defer cm.Close()

	key := MatrixKey(uuid.New(), nil, uuid.New(), "Group management")
	access, err := json.Marshal(map[string]bool{"view": true})
	require.NoError(t, err)

	require.NoError(t, cm.SetMatrix(key, &MatrixCacheData{
		Matched: true,
		Service: "Admin",
		Feature: "Group management",
		Access:  access,
	}))

	data, found := cm.GetMatrix(key)
	require.True(t, found)
	assert.True(t, data.Matched)
	assert.Equal(t, "Admin", data.Service)
	assert.Equal(t, "Group management", data.Feature)
	assert.False(t, data.CachedAt.IsZero())
}

func TestGetMatrixMiss(t *testing.T) {
	cm, _ := newTestCache(t)
	defer cm.Close()

	_, found := cm.GetMatrix("perm:user:missing")
	assert.False(t, found)
}

func TestNegativeCaching(t *testing.T) {
	cm, _ := newTestCache(t)
	defer cm.Close()

	key := MatrixKey(uuid.New(), nil, uuid.New(), "Role management")
	require.NoError(t, cm.SetMatrix(key, &MatrixCacheData{Matched: false}))

	data, found := cm.GetMatrix(key)
	require.True(t, found)
	assert.False(t, data.Matched)
}

func TestMatrixExpiry(t *testing.T) {
	cm, server := newTestCache(t)
	defer cm.Close()

	key := MatrixKey(uuid.New(), nil, uuid.New(), "User management")
	require.NoError(t, cm.SetMatrix(key, &MatrixCacheData{Matched: true}))

	server.FastForward(MatrixTTL + 1)

	_, found := cm.GetMatrix(key)
	assert.False(t, found)
}

func TestInvalidateUser(t *testing.T) {
	cm, _ := newTestCache(t)
	defer cm.Close()

	victim := uuid.New()
	other := uuid.New()
	serviceID := uuid.New()

	victimKey := MatrixKey(victim, nil, serviceID, "User management")
	otherKey := MatrixKey(other, nil, serviceID, "User management")
	require.NoError(t, cm.SetMatrix(victimKey, &MatrixCacheData{Matched: true}))
	require.NoError(t, cm.SetMatrix(otherKey, &MatrixCacheData{Matched: true}))

	require.NoError(t, cm.InvalidateUser(victim))

	_, found := cm.GetMatrix(victimKey)
	assert.False(t, found)

	_, found = cm.GetMatrix(otherKey)
	assert.True(t, found)
}

func TestInvalidateAll(t *testing.T) {
	cm, _ := newTestCache(t)
	defer cm.Close()

	serviceID := uuid.New()
	keys := []string{
		MatrixKey(uuid.New(), nil, serviceID, "User management"),
		MatrixKey(uuid.New(), nil, serviceID, "Group management"),
	}
	for _, key := range keys {
		require.NoError(t, cm.SetMatrix(key, &MatrixCacheData{Matched: true}))
	}

	require.NoError(t, cm.InvalidateAll())

	for _, key := range keys {
		_, found := cm.GetMatrix(key)
		assert.False(t, found)
	}
}

func TestNilCacheManagerIsCacheOff(t *testing.T) {
	var cm *CacheManager

	_, found := cm.GetMatrix("any")
	assert.False(t, found)

	assert.Error(t, cm.SetMatrix("any", &MatrixCacheData{}))
	assert.NoError(t, cm.InvalidateUser(uuid.New()))
	assert.NoError(t, cm.InvalidateAll())
	assert.NoError(t, cm.Close())
}
