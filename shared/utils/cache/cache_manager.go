package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tenantadmin-backend/shared/config"
)

type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

// MatrixCacheData is a cached permission resolution. Matched false records a
// negative result so unmatched lookups also avoid the database.
type MatrixCacheData struct {
	Matched  bool            `json:"matched"`
	Service  string          `json:"service,omitempty"`
	Feature  string          `json:"feature,omitempty"`
	Access   json.RawMessage `json:"access,omitempty"`
	CachedAt time.Time       `json:"cached_at"`
}

var (
	globalCacheManager *CacheManager
	MatrixTTL          = 15 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// NewCacheManager wraps an existing client; used by tests.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{client: client, ctx: context.Background()}
}

// GetCacheManager returns the global cache manager instance, or nil when the
// cache is unavailable. Callers treat nil as cache-off and hit the database.
func GetCacheManager() *CacheManager {
	return globalCacheManager
}

// MatrixKey generates the cache key for a resolved permission matrix
func MatrixKey(userID uuid.UUID, company *uuid.UUID, serviceID uuid.UUID, feature string) string {
	companyKey := "none"
	if company != nil {
		companyKey = company.String()
	}
	return fmt.Sprintf("perm:user:%s:company:%s:svc:%s:feat:%s", userID, companyKey, serviceID, feature)
}

// GetMatrix returns a cached resolution if present
func (cm *CacheManager) GetMatrix(key string) (*MatrixCacheData, bool) {
	if cm == nil || cm.client == nil {
		return nil, false
	}

	raw, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var data MatrixCacheData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, false
	}

	return &data, true
}

// SetMatrix caches a resolution result
func (cm *CacheManager) SetMatrix(key string, data *MatrixCacheData) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	data.CachedAt = time.Now()
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return cm.client.Set(cm.ctx, key, raw, MatrixTTL).Err()
}

// InvalidateUser drops every cached matrix for one user; called after a role
// assignment changes.
func (cm *CacheManager) InvalidateUser(userID uuid.UUID) error {
	if cm == nil || cm.client == nil {
		return nil
	}
	return cm.deletePattern(fmt.Sprintf("perm:user:%s:*", userID))
}

// InvalidateAll drops every cached matrix; called after a role's permission
// grid changes, since the affected users are not tracked per key.
func (cm *CacheManager) InvalidateAll() error {
	if cm == nil || cm.client == nil {
		return nil
	}
	return cm.deletePattern("perm:user:*")
}

func (cm *CacheManager) deletePattern(pattern string) error {
	iter := cm.client.Scan(cm.ctx, 0, pattern, 100).Iterator()
	for iter.Next(cm.ctx) {
		if err := cm.client.Del(cm.ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the underlying redis connection
func (cm *CacheManager) Close() error {
	if cm == nil || cm.client == nil {
		return nil
	}
	return cm.client.Close()
}
