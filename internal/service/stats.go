package service

import (
	"starcg-market-api/internal/model"

	"github.com/shopspring/decimal"
)

// PriceStats summarizes a history snapshot.
type PriceStats struct {
	MinPrice float64
	AvgPrice float64
}

// ComputePriceStats returns the minimum raw price and the mean rounded to the
// nearest integer (half away from zero). ok is false for an empty snapshot.
func ComputePriceStats(records []model.HistoryRecord) (stats PriceStats, ok bool) {
	if len(records) == 0 {
		return PriceStats{}, false
	}

	minPrice := decimal.NewFromFloat(records[0].Price)
	sum := decimal.Zero
	for _, r := range records {
		p := decimal.NewFromFloat(r.Price)
		if p.LessThan(minPrice) {
			minPrice = p
		}
		sum = sum.Add(p)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(records)))).Round(0)

	return PriceStats{
		MinPrice: minPrice.InexactFloat64(),
		AvgPrice: avg.InexactFloat64(),
	}, true
}
