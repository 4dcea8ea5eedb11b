package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"symbol_backend/internal/feature/symbols/domain/entity"
	"symbol_backend/internal/feature/symbols/usecase"
)

const (
	defaultEntityCapacity = 1000
	defaultSearchCapacity = 200

	// rough per-entry heap cost used by MemoryEstimate
	approxEntityBytes = 640
	approxSearchBytes = 4096
)

// CachingSymbolRepository decorates a SymbolRepository with a two-tier cache:
// an in-process LRU for entities and search pages, plus an optional shared
// Redis tier for entity lookups. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
type CachingSymbolRepository struct {
	inner     usecase.SymbolRepository
	entities  *LRU
	searches  *LRU
	stats     *Stats
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.SymbolRepository = (*CachingSymbolRepository)(nil)

// NewCachingSymbolRepository decorates a SymbolRepository with caching.
// rdb may be nil to run without the shared tier. If ttl is 0, it defaults to
// 5 minutes. If namespace is empty, it uses "symbols".
func NewCachingSymbolRepository(inner usecase.SymbolRepository, entityCapacity, searchCapacity int, rdb *redis.Client, ttl time.Duration, namespace string) *CachingSymbolRepository {
	if entityCapacity <= 0 {
		entityCapacity = defaultEntityCapacity
	}
	if searchCapacity <= 0 {
		searchCapacity = defaultSearchCapacity
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "symbols"
	}
	return &CachingSymbolRepository{
		inner:     inner,
		entities:  NewLRU(entityCapacity),
		searches:  NewLRU(searchCapacity),
		stats:     &Stats{},
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// entityKeys は既知のエイリアスキーをすべて返します。書き込み時の
// 無効化はこの全エイリアスに対して行います。
func entityKeys(s *entity.StandardizedSymbol) []string {
	return []string{
		"id:" + s.ID,
		"trading:" + string(s.Exchange) + ":" + s.TradingSymbol,
		"trading:" + s.TradingSymbol,
	}
}

// GetByID retrieves a symbol, checking the local then the shared tier before
// falling back to the underlying repository.
func (c *CachingSymbolRepository) GetByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
	return c.getEntity(ctx, "id:"+id, func() (*entity.StandardizedSymbol, error) {
		return c.inner.GetByID(ctx, id)
	})
}

// GetByTradingSymbol retrieves a symbol by its legacy trading-symbol alias.
func (c *CachingSymbolRepository) GetByTradingSymbol(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
	key := "trading:" + tradingSymbol
	if exchange != "" {
		key = "trading:" + string(exchange) + ":" + tradingSymbol
	}
	return c.getEntity(ctx, key, func() (*entity.StandardizedSymbol, error) {
		return c.inner.GetByTradingSymbol(ctx, tradingSymbol, exchange)
	})
}

// getEntity is the shared read path for the entity cache.
func (c *CachingSymbolRepository) getEntity(ctx context.Context, key string, load func() (*entity.StandardizedSymbol, error)) (*entity.StandardizedSymbol, error) {
	// 1) ローカルLRU
	if v, ok := c.entities.Get(key); ok {
		c.stats.Hit()
		cached := v.(entity.StandardizedSymbol)
		return &cached, nil
	}

	// 2) 共有Redis層（設定時のみ）
	if c.rdb != nil {
		if b, err := c.rdb.Get(ctx, c.redisKey(key)).Bytes(); err == nil && len(b) > 0 {
			var s entity.StandardizedSymbol
			if err := json.Unmarshal(b, &s); err == nil {
				c.stats.Hit()
				c.entities.Put(key, s)
				return &s, nil
			}
			// 壊れたキャッシュエントリは削除
			_ = c.rdb.Del(ctx, c.redisKey(key)).Err()
		}
	}

	c.stats.Miss()

	// 3) データベースにフォールバック
	s, err := load()
	if err != nil {
		return nil, err
	}

	c.entities.Put(key, *s)
	if c.rdb != nil {
		if b, err := json.Marshal(s); err == nil {
			_ = c.rdb.Set(ctx, c.redisKey(key), b, c.ttl).Err() // Best effort
		}
	}
	return s, nil
}

// GetByUnderlying passes through; chains are rebuilt on every write so caching
// them buys little.
func (c *CachingSymbolRepository) GetByUnderlying(ctx context.Context, underlying string) ([]entity.StandardizedSymbol, error) {
	return c.inner.GetByUnderlying(ctx, underlying)
}

// Search serves pages from the search-result cache, keyed by the stable
// fingerprint of the filter set.
func (c *CachingSymbolRepository) Search(ctx context.Context, filters usecase.SearchFilters) (*usecase.SearchResult, error) {
	key := SearchFingerprint(filters)
	if v, ok := c.searches.Get(key); ok {
		c.stats.Hit()
		cached := v.(usecase.SearchResult)
		// 呼び出し側がページを書き換えてもキャッシュ本体を汚さないようスライスを複製する
		cached.Symbols = append([]entity.StandardizedSymbol(nil), cached.Symbols...)
		return &cached, nil
	}
	c.stats.Miss()

	res, err := c.inner.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	snapshot := *res
	snapshot.Symbols = append([]entity.StandardizedSymbol(nil), res.Symbols...)
	c.searches.Put(key, snapshot)
	return res, nil
}

// UpsertOne writes through and invalidates: every alias of the touched symbol
// is dropped from the entity cache, and the search cache is cleared wholesale
// since any write can change any search's result set.
func (c *CachingSymbolRepository) UpsertOne(ctx context.Context, candidate *entity.StandardizedSymbol) (entity.ChangeType, error) {
	changeType, err := c.inner.UpsertOne(ctx, candidate)
	if err != nil {
		return changeType, err
	}

	for _, key := range entityKeys(candidate) {
		c.entities.Remove(key)
		if c.rdb != nil {
			_ = c.rdb.Del(ctx, c.redisKey(key)).Err() // Best effort
		}
	}
	c.searches.Purge()

	return changeType, nil
}

// HistoryForSymbol passes through to the underlying repository.
func (c *CachingSymbolRepository) HistoryForSymbol(ctx context.Context, symbolID string, limit int) ([]entity.SymbolHistory, error) {
	return c.inner.HistoryForSymbol(ctx, symbolID, limit)
}

// CreateProcessingLog passes through to the underlying repository.
func (c *CachingSymbolRepository) CreateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error {
	return c.inner.CreateProcessingLog(ctx, log)
}

// UpdateProcessingLog passes through to the underlying repository.
func (c *CachingSymbolRepository) UpdateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error {
	return c.inner.UpdateProcessingLog(ctx, log)
}

// RecentProcessingLogs passes through to the underlying repository.
func (c *CachingSymbolRepository) RecentProcessingLogs(ctx context.Context, limit int) ([]entity.ProcessingLog, error) {
	return c.inner.RecentProcessingLogs(ctx, limit)
}

// CreateRejectedSymbol passes through to the underlying repository.
func (c *CachingSymbolRepository) CreateRejectedSymbol(ctx context.Context, rejected *entity.RejectedSymbol) error {
	return c.inner.CreateRejectedSymbol(ctx, rejected)
}

// Stats returns the current hit/miss snapshot.
func (c *CachingSymbolRepository) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// ResetStats zeroes the counters without dropping cached entries.
func (c *CachingSymbolRepository) ResetStats() {
	c.stats.Reset()
}

// MemoryBreakdown reports an observability estimate of cache memory use.
type MemoryBreakdown struct {
	EntityEntries int   `json:"entity_entries"`
	SearchEntries int   `json:"search_entries"`
	EntityBytes   int64 `json:"entity_bytes"`
	SearchBytes   int64 `json:"search_bytes"`
	TotalBytes    int64 `json:"total_bytes"`
}

// MemoryEstimate returns a rough total plus per-structure breakdown.
func (c *CachingSymbolRepository) MemoryEstimate() MemoryBreakdown {
	b := MemoryBreakdown{
		EntityEntries: c.entities.Len(),
		SearchEntries: c.searches.Len(),
	}
	b.EntityBytes = int64(b.EntityEntries) * approxEntityBytes
	b.SearchBytes = int64(b.SearchEntries) * approxSearchBytes
	b.TotalBytes = b.EntityBytes + b.SearchBytes
	return b
}

func (c *CachingSymbolRepository) redisKey(key string) string {
	return c.namespace + ":" + key
}
