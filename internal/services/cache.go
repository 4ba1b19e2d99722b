package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/logger"
	"github.com/relieflink/disaster-response-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache is the shared TTL key/value store. All operations are best-effort:
// storage errors degrade to a miss or a false return, never to a failure
// of the caller's primary operation.
type Cache interface {
	// Get returns the cached value, or ok=false on miss, expiry, or error.
	// Reading an expired entry deletes it (lazy eviction).
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	// Set upserts the value under key with expires_at = now + ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	// Delete removes the entry for key.
	Delete(ctx context.Context, key string) bool
	// ClearExpired removes every entry past its expiry in one batch.
	ClearExpired(ctx context.Context) bool
}

// DBCache backs Cache with the relational `cache` table.
type DBCache struct {
	db    *database.DB
	clock clockwork.Clock
}

func NewDBCache(db *database.DB, clock clockwork.Clock) *DBCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DBCache{db: db, clock: clock}
}

func (c *DBCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	log := logger.GetLogger("cache")

	var entry models.CacheEntry
	err := c.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("cache get failed for %s: %v", key, err)
		}
		return nil, false
	}

	if !entry.ExpiresAt.After(c.clock.Now()) {
		c.Delete(ctx, key)
		return nil, false
	}

	return json.RawMessage(entry.Value), true
}

func (c *DBCache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	log := logger.GetLogger("cache")

	raw, err := json.Marshal(value)
	if err != nil {
		log.Warnf("cache set failed to marshal %s: %v", key, err)
		return false
	}

	entry := models.CacheEntry{
		Key:       key,
		Value:     raw,
		ExpiresAt: c.clock.Now().Add(ttl),
	}

	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&entry).Error
	if err != nil {
		log.Warnf("cache set failed for %s: %v", key, err)
		return false
	}

	log.Debugf("cache set: %s", key)
	return true
}

func (c *DBCache) Delete(ctx context.Context, key string) bool {
	err := c.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CacheEntry{}).Error
	if err != nil {
		logger.GetLogger("cache").Warnf("cache delete failed for %s: %v", key, err)
		return false
	}
	return true
}

func (c *DBCache) ClearExpired(ctx context.Context) bool {
	log := logger.GetLogger("cache")

	err := c.db.WithContext(ctx).
		Where("expires_at < ?", c.clock.Now()).
		Delete(&models.CacheEntry{}).Error
	if err != nil {
		log.Warnf("cache clear failed: %v", err)
		return false
	}

	log.Info("cache cleared of expired entries")
	return true
}

// MemoryCache is an in-process Cache with the same lazy-expiry contract,
// for cache-less deployments and tests.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	clock clockwork.Clock
}

type memoryEntry struct {
	value     json.RawMessage
	expiresAt time.Time
}

func NewMemoryCache(clock clockwork.Clock) *MemoryCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryCache{
		items: make(map[string]memoryEntry),
		clock: clock,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (json.RawMessage, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(c.clock.Now()) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}

	c.mu.Lock()
	c.items[key] = memoryEntry{value: raw, expiresAt: c.clock.Now().Add(ttl)}
	c.mu.Unlock()
	return true
}

func (c *MemoryCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return true
}

func (c *MemoryCache) ClearExpired(_ context.Context) bool {
	now := c.clock.Now()

	c.mu.Lock()
	for key, entry := range c.items {
		if !entry.expiresAt.After(now) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
	return true
}

// cacheGet unmarshals a cached value into out, treating decode failures as
// a miss so a shape change in the cached payload self-heals on expiry.
func cacheGet[T any](ctx context.Context, cache Cache, key string, out *T) bool {
	raw, ok := cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		cache.Delete(ctx, key)
		return false
	}
	return true
}
