package models

import (
	"time"

	"gorm.io/datatypes"
)

// CacheEntry represents one row of the shared TTL cache
// DB: cache
type CacheEntry struct {
	Key       string         `gorm:"column:key;size:500;primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;type:jsonb;not null" json:"value"`
	ExpiresAt time.Time      `gorm:"column:expires_at;not null;index:idx_cache_expires" json:"expires_at"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CacheEntry) TableName() string {
	return "cache"
}
