package service

import (
	"context"
	"fmt"
	"strings"

	"starcg-market-api/internal/cache"
	"starcg-market-api/internal/market"
	"starcg-market-api/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MaxHistoryPages bounds caller-supplied history page budgets.
const MaxHistoryPages = 20

// Aggregator fetches every page of a search.
type Aggregator interface {
	FetchAll(ctx context.Context, search string) (*model.MarketResponse, error)
}

// HistoryFetcher looks up completed transactions.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, name string, typ model.HistoryType, maxPages int) []model.HistoryRecord
}

// MarketService answers market commands: single pages straight from the
// upstream, and cached, deduplicated aggregate and history lookups.
type MarketService struct {
	pages      market.PageFetcher
	aggregator Aggregator
	history    HistoryFetcher
	cache      *cache.ResultCache
	group      singleflight.Group
	logger     *zap.SugaredLogger
}

// NewMarketService wires the upstream client, aggregator and result cache.
// cache may be nil to disable caching.
func NewMarketService(pages market.PageFetcher, aggregator Aggregator, history HistoryFetcher, resultCache *cache.ResultCache, logger *zap.SugaredLogger) *MarketService {
	return &MarketService{
		pages:      pages,
		aggregator: aggregator,
		history:    history,
		cache:      resultCache,
		logger:     logger.Named("market-service"),
	}
}

// FetchPage returns one upstream page, uncached.
func (s *MarketService) FetchPage(ctx context.Context, search string, page int) (*model.MarketResponse, error) {
	if page < 1 {
		return nil, invalid("page", "must be at least 1, got %d", page)
	}
	return s.pages.FetchPage(ctx, search, page)
}

// FetchAll returns every page of search merged, unfiltered.
func (s *MarketService) FetchAll(ctx context.Context, search string) (*model.MarketResponse, error) {
	if s.cache != nil {
		if resp, ok := s.cache.GetMarket(ctx, search); ok {
			return resp, nil
		}
	}

	v, err, shared := s.group.Do("market:"+market.FoldQuery(search), func() (any, error) {
		resp, err := s.aggregator.FetchAll(ctx, search)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetMarket(ctx, search, resp)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp := v.(*model.MarketResponse)
	if shared {
		resp = cloneMarketResponse(resp)
	}
	return resp, nil
}

// Search returns every page of search narrowed to listings whose name
// contains the search text.
func (s *MarketService) Search(ctx context.Context, search string) (*model.MarketResponse, error) {
	resp, err := s.FetchAll(ctx, search)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(search) != "" {
		resp = market.FilterByName(resp, search)
	}
	return resp, nil
}

// Listings flattens a filtered search into rows priced for sorting.
func (s *MarketService) Listings(ctx context.Context, search string, crystalRatio float64) ([]model.Listing, error) {
	resp, err := s.Search(ctx, search)
	if err != nil {
		return nil, err
	}
	return market.BuildListings(resp, crystalRatio), nil
}

// FetchHistory returns cached history for search and typ, fetching on a miss.
// History is best effort and never fails; an empty result is cached too.
func (s *MarketService) FetchHistory(ctx context.Context, search string, typ model.HistoryType, maxPages int) ([]model.HistoryRecord, error) {
	if strings.TrimSpace(search) == "" {
		return nil, invalid("search", "must not be empty")
	}
	if maxPages <= 0 {
		maxPages = market.DefaultHistoryPages
	}
	if maxPages > MaxHistoryPages {
		return nil, invalid("maxPages", "must be at most %d, got %d", MaxHistoryPages, maxPages)
	}

	if s.cache != nil {
		if records, ok := s.cache.GetHistory(ctx, search, typ); ok {
			return records, nil
		}
	}

	key := fmt.Sprintf("history:%s:%s:%d", market.FoldQuery(search), typ, maxPages)
	v, _, shared := s.group.Do(key, func() (any, error) {
		records := s.history.FetchHistory(ctx, search, typ, maxPages)
		if s.cache != nil {
			s.cache.SetHistory(ctx, search, typ, records)
		}
		return records, nil
	})

	records := v.([]model.HistoryRecord)
	if shared {
		records = append([]model.HistoryRecord(nil), records...)
	}
	return records, nil
}

// ClearCache drops every cached result.
func (s *MarketService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.logger.Infow("Clearing result cache")
	return s.cache.Clear(ctx)
}

// CacheStats reports cached entry counts.
func (s *MarketService) CacheStats(ctx context.Context) (cache.Stats, error) {
	if s.cache == nil {
		return cache.Stats{}, nil
	}
	return s.cache.Stats(ctx)
}

func cloneMarketResponse(src *model.MarketResponse) *model.MarketResponse {
	dst := model.NewMarketResponse()
	dst.Stalls = append(dst.Stalls, src.Stalls...)
	for cd, items := range src.ItemsByCd {
		dst.ItemsByCd[cd] = append([]model.MarketItem(nil), items...)
	}
	for cd, pets := range src.PetsByCd {
		dst.PetsByCd[cd] = append([]model.MarketPet(nil), pets...)
	}
	if src.TotalFiltered != nil {
		total := *src.TotalFiltered
		dst.TotalFiltered = &total
	}
	return dst
}
