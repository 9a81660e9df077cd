package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"starcg-market-api/internal/cache"
	"starcg-market-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAggregator struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (a *countingAggregator) FetchAll(ctx context.Context, search string) (*model.MarketResponse, error) {
	a.calls.Add(1)
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if a.err != nil {
		return nil, a.err
	}
	resp := model.NewMarketResponse()
	resp.Stalls = []model.MarketStall{{CdKey: "a", Name: "Shop"}, {CdKey: "b", Name: "Other"}}
	resp.ItemsByCd["a"] = []model.MarketItem{{Name: "Iron Sword", Price: 2, PriceType: model.PriceTypeCrystal}}
	resp.ItemsByCd["b"] = []model.MarketItem{{Name: "Potion", Price: 5}}
	total := 2
	resp.TotalFiltered = &total
	return resp, nil
}

type pageStub struct{}

func (pageStub) FetchPage(ctx context.Context, search string, page int) (*model.MarketResponse, error) {
	resp := model.NewMarketResponse()
	resp.Stalls = []model.MarketStall{{CdKey: search}}
	return resp, nil
}

func newMarketService(agg Aggregator, hist HistoryFetcher) *MarketService {
	rc := cache.NewResultCache(cache.NewMemoryCache(50), cache.NewMemoryCache(50), 0, 0, testLogger, nil)
	return NewMarketService(pageStub{}, agg, hist, rc, testLogger)
}

func TestMarketService_FetchAllIsCached(t *testing.T) {
	ctx := context.Background()
	agg := &countingAggregator{}
	s := newMarketService(agg, &stubHistory{})

	first, err := s.FetchAll(ctx, "Sword")
	require.NoError(t, err)
	second, err := s.FetchAll(ctx, "SWORD")
	require.NoError(t, err)

	assert.Equal(t, int32(1), agg.calls.Load())
	assert.Equal(t, first.Stalls, second.Stalls)

	stats, err := s.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MarketEntries)

	require.NoError(t, s.ClearCache(ctx))
	_, err = s.FetchAll(ctx, "sword")
	require.NoError(t, err)
	assert.Equal(t, int32(2), agg.calls.Load())
}

func TestMarketService_ConcurrentMissesShareOneFetch(t *testing.T) {
	agg := &countingAggregator{delay: 50 * time.Millisecond}
	s := newMarketService(agg, &stubHistory{})

	var wg sync.WaitGroup
	results := make([]*model.MarketResponse, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.Search(context.Background(), "sword")
			assert.NoError(t, err)
			results[i] = resp
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), agg.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Len(t, r.Stalls, 1)
	}
}

func TestMarketService_SearchFiltersWithoutPoisoningCache(t *testing.T) {
	ctx := context.Background()
	s := newMarketService(&countingAggregator{}, &stubHistory{})

	filtered, err := s.Search(ctx, "sword")
	require.NoError(t, err)
	require.Len(t, filtered.Stalls, 1)
	assert.Equal(t, "a", filtered.Stalls[0].CdKey)

	all, err := s.FetchAll(ctx, "sword")
	require.NoError(t, err)
	assert.Len(t, all.Stalls, 2)
}

func TestMarketService_FetchAllErrorPropagates(t *testing.T) {
	boom := errors.New("upstream down")
	s := newMarketService(&countingAggregator{err: boom}, &stubHistory{})

	_, err := s.FetchAll(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	stats, _ := s.CacheStats(context.Background())
	assert.Zero(t, stats.MarketEntries)
}

func TestMarketService_Listings(t *testing.T) {
	rows, err := newMarketService(&countingAggregator{}, &stubHistory{}).Listings(context.Background(), "sword", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Iron Sword", rows[0].Name)
	assert.Equal(t, 350.0, rows[0].SortablePrice)
}

func TestMarketService_FetchPage(t *testing.T) {
	s := newMarketService(&countingAggregator{}, &stubHistory{})

	resp, err := s.FetchPage(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, "q", resp.Stalls[0].CdKey)

	_, err = s.FetchPage(context.Background(), "q", 0)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMarketService_FetchHistoryIsCached(t *testing.T) {
	ctx := context.Background()
	hist := &stubHistory{records: map[string][]model.HistoryRecord{"Gem": prices(3, 4)}}
	s := newMarketService(&countingAggregator{}, hist)

	records, err := s.FetchHistory(ctx, "Gem", model.HistoryTypeItem, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	again, err := s.FetchHistory(ctx, "gem", model.HistoryTypeItem, 3)
	require.NoError(t, err)
	assert.Equal(t, records, again)
	assert.Len(t, hist.calls, 1)

	_, err = s.FetchHistory(ctx, "Gem", model.HistoryTypePet, 3)
	require.NoError(t, err)
	assert.Len(t, hist.calls, 2)
}

func TestMarketService_FetchHistoryValidates(t *testing.T) {
	s := newMarketService(&countingAggregator{}, &stubHistory{})
	var verr *ValidationError

	_, err := s.FetchHistory(context.Background(), " ", model.HistoryTypeAll, 3)
	assert.ErrorAs(t, err, &verr)

	_, err = s.FetchHistory(context.Background(), "x", model.HistoryTypeAll, MaxHistoryPages+1)
	assert.ErrorAs(t, err, &verr)
}
