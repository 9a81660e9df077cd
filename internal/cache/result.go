package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"starcg-market-api/internal/market"
	"starcg-market-api/internal/metrics"
	"starcg-market-api/internal/model"

	"go.uber.org/zap"
)

// Default TTLs for the two result spaces.
const (
	DefaultMarketTTL  = 5 * time.Minute
	DefaultHistoryTTL = 10 * time.Minute
)

// MarketKey derives the market-space key for a search.
func MarketKey(search string) string {
	return "market:" + market.FoldQuery(search)
}

// HistoryKey derives the history-space key for a search and type filter.
func HistoryKey(search string, typ model.HistoryType) string {
	return "history:" + market.FoldQuery(search) + ":" + string(typ)
}

// Stats reports the live entry count of each space.
type Stats struct {
	MarketEntries  int `json:"marketEntries"`
	HistoryEntries int `json:"historyEntries"`
}

// ResultCache holds aggregated market results and history lookups in two
// independent spaces. Values are stored serialized, so callers always get
// their own copy.
type ResultCache struct {
	market     Cache
	history    Cache
	marketTTL  time.Duration
	historyTTL time.Duration
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// NewResultCache wires two cache spaces into a typed result cache.
func NewResultCache(marketSpace, historySpace Cache, marketTTL, historyTTL time.Duration, logger *zap.SugaredLogger, m *metrics.Metrics) *ResultCache {
	if marketTTL <= 0 {
		marketTTL = DefaultMarketTTL
	}
	if historyTTL <= 0 {
		historyTTL = DefaultHistoryTTL
	}
	return &ResultCache{
		market:     marketSpace,
		history:    historySpace,
		marketTTL:  marketTTL,
		historyTTL: historyTTL,
		logger:     logger.Named("cache"),
		metrics:    m,
	}
}

// GetMarket returns the cached aggregate for search, if fresh.
func (c *ResultCache) GetMarket(ctx context.Context, search string) (*model.MarketResponse, bool) {
	var resp model.MarketResponse
	if !c.get(ctx, c.market, "market", MarketKey(search), &resp) {
		return nil, false
	}
	if resp.ItemsByCd == nil {
		resp.ItemsByCd = make(map[string][]model.MarketItem)
	}
	if resp.PetsByCd == nil {
		resp.PetsByCd = make(map[string][]model.MarketPet)
	}
	return &resp, true
}

// SetMarket stores the aggregate for search.
func (c *ResultCache) SetMarket(ctx context.Context, search string, resp *model.MarketResponse) {
	c.set(ctx, c.market, MarketKey(search), resp, c.marketTTL)
}

// GetHistory returns cached history records, if fresh.
func (c *ResultCache) GetHistory(ctx context.Context, search string, typ model.HistoryType) ([]model.HistoryRecord, bool) {
	var records []model.HistoryRecord
	if !c.get(ctx, c.history, "history", HistoryKey(search, typ), &records) {
		return nil, false
	}
	if records == nil {
		records = []model.HistoryRecord{}
	}
	return records, true
}

// SetHistory stores history records for search and typ.
func (c *ResultCache) SetHistory(ctx context.Context, search string, typ model.HistoryType, records []model.HistoryRecord) {
	c.set(ctx, c.history, HistoryKey(search, typ), records, c.historyTTL)
}

// Stats returns entry counts for both spaces.
func (c *ResultCache) Stats(ctx context.Context) (Stats, error) {
	m, err := c.market.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	h, err := c.history.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{MarketEntries: m, HistoryEntries: h}, nil
}

// Clear empties both spaces.
func (c *ResultCache) Clear(ctx context.Context) error {
	return errors.Join(c.market.Clear(ctx), c.history.Clear(ctx))
}

func (c *ResultCache) get(ctx context.Context, space Cache, kind, key string, v any) bool {
	data, err := space.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warnw("Cache read failed", "key", key, "error", err)
		}
		c.recordMiss(ctx, kind)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warnw("Discarding undecodable cache entry", "key", key, "error", err)
		_ = space.Delete(ctx, key)
		c.recordMiss(ctx, kind)
		return false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, kind)
	}
	return true
}

func (c *ResultCache) set(ctx context.Context, space Cache, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warnw("Cache encode failed", "key", key, "error", err)
		return
	}
	if err := space.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warnw("Cache write failed", "key", key, "error", err)
	}
}

func (c *ResultCache) recordMiss(ctx context.Context, kind string) {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(ctx, kind)
	}
}
