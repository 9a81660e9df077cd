package market

import (
	"context"

	"starcg-market-api/internal/model"

	"go.uber.org/zap"
)

// PageFetcher fetches a single page of search results.
type PageFetcher interface {
	FetchPage(ctx context.Context, search string, page int) (*model.MarketResponse, error)
}

// Aggregator walks the paginated search endpoint and merges every page.
type Aggregator struct {
	fetcher  PageFetcher
	maxPages int
	logger   *zap.SugaredLogger
}

// NewAggregator creates an aggregator. maxPages <= 0 removes the page cap.
func NewAggregator(fetcher PageFetcher, maxPages int, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		maxPages: maxPages,
		logger:   logger.Named("aggregator"),
	}
}

// FetchAll requests pages sequentially from page 1 until the upstream total is
// reached or a page comes back empty. A failure on page 1 is returned; a later
// failure ends the walk and the pages fetched so far are returned.
func (a *Aggregator) FetchAll(ctx context.Context, search string) (*model.MarketResponse, error) {
	merged := model.NewMarketResponse()
	total := 0

	for page := 1; ; page++ {
		if a.maxPages > 0 && page > a.maxPages {
			a.logger.Warnw("Page cap reached, returning partial result",
				"search", search, "maxPages", a.maxPages, "stalls", len(merged.Stalls), "total", total)
			break
		}

		resp, err := a.fetcher.FetchPage(ctx, search, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			a.logger.Warnw("Page fetch failed, returning partial result",
				"search", search, "page", page, "error", err)
			break
		}

		merged.Stalls = append(merged.Stalls, resp.Stalls...)
		for cd, items := range resp.ItemsByCd {
			merged.ItemsByCd[cd] = items
		}
		for cd, pets := range resp.PetsByCd {
			merged.PetsByCd[cd] = pets
		}

		if resp.TotalFiltered != nil && *resp.TotalFiltered > 0 {
			total = *resp.TotalFiltered
		} else {
			total = len(merged.Stalls)
		}

		if len(merged.Stalls) >= total {
			break
		}
		if len(resp.Stalls) == 0 {
			break
		}
	}

	merged.TotalFiltered = &total
	return merged, nil
}
