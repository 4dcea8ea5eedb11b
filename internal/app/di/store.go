// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"symbol_backend/internal/feature/symbols/adapters"
	"symbol_backend/internal/platform/cache"
)

const (
	entityCacheCapacity = 1000
	searchCacheCapacity = 200
	redisTTL            = 5 * time.Minute
)

// NewSymbolStore creates the symbol repository wrapped in the two-tier cache.
// rdb may be nil; the cache then runs with the in-process LRU tier only.
func NewSymbolStore(db *gorm.DB, rdb *redis.Client) *cache.CachingSymbolRepository {
	inner := adapters.NewSymbolRepository(db)
	return cache.NewCachingSymbolRepository(inner, entityCacheCapacity, searchCacheCapacity, rdb, redisTTL, "symbols")
}
