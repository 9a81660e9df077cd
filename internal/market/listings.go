package market

import (
	"fmt"
	"time"

	"starcg-market-api/internal/model"
)

// BuildListings flattens resp into one row per item or pet, in stall order.
// Stalls with no cdKey or no matching listings produce no rows. Premium-currency
// prices are scaled by crystalRatio into SortablePrice.
func BuildListings(resp *model.MarketResponse, crystalRatio float64) []model.Listing {
	if crystalRatio <= 0 {
		crystalRatio = model.DefaultCrystalRatio
	}

	rows := []model.Listing{}
	if resp == nil {
		return rows
	}

	for _, stall := range resp.Stalls {
		if stall.CdKey == "" {
			continue
		}
		base := model.Listing{
			StallName: stall.Name,
			Server:    stall.Server,
			Coords:    fmt.Sprintf("%d,%d", stall.X, stall.Y),
			X:         stall.X,
			Y:         stall.Y,
			StartTime: stall.StartTime,
		}

		for _, item := range resp.ItemsByCd[stall.CdKey] {
			row := base
			row.Type = model.ItemTypeItem
			row.Name = item.Name
			row.Price = item.Price
			row.PriceType = item.PriceType
			row.IconID = item.IconID
			row.SortablePrice = sortablePrice(item.Price, item.PriceType, crystalRatio)
			rows = append(rows, row)
		}

		for _, pet := range resp.PetsByCd[stall.CdKey] {
			row := base
			row.Type = model.ItemTypePet
			row.Name = pet.Name
			row.Price = pet.Price
			row.PriceType = pet.PriceType
			row.IconID = pet.IconID
			row.SortablePrice = sortablePrice(pet.Price, pet.PriceType, crystalRatio)
			rows = append(rows, row)
		}
	}
	return rows
}

func sortablePrice(price float64, pt model.PriceType, ratio float64) float64 {
	if pt == model.PriceTypeCrystal {
		return price * ratio
	}
	return price
}

// TimeUntilExpiration describes how long until the unix timestamp ts.
func TimeUntilExpiration(ts int64, now time.Time) string {
	if ts == 0 {
		return ""
	}

	diff := time.Unix(ts, 0).Sub(now)
	if diff <= 0 {
		return "expired"
	}

	if days := int(diff / (24 * time.Hour)); days > 0 {
		return fmt.Sprintf("%d days left", days)
	}
	if hours := int(diff / time.Hour); hours > 0 {
		return fmt.Sprintf("%d hours left", hours)
	}
	return fmt.Sprintf("%d minutes left", int(diff/time.Minute))
}
