package market

import (
	"testing"
	"time"

	"starcg-market-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListings(t *testing.T) {
	resp := model.NewMarketResponse()
	resp.Stalls = []model.MarketStall{
		{CdKey: "a", Name: "Shop A", Server: "S1", X: 1, Y: 2, StartTime: 99},
		{CdKey: "", Name: "No key"},
		{CdKey: "b", Name: "Shop B"},
	}
	resp.ItemsByCd["a"] = []model.MarketItem{{Name: "Sword", Price: 10, PriceType: model.PriceTypeCrystal, IconID: "i1"}}
	resp.PetsByCd["a"] = []model.MarketPet{{Name: "Wolf", Price: 500, PriceType: model.PriceTypeGold}}

	rows := BuildListings(resp, 0)
	require.Len(t, rows, 2)

	assert.Equal(t, model.Listing{
		Type: model.ItemTypeItem, Name: "Sword", Price: 10, PriceType: model.PriceTypeCrystal,
		StallName: "Shop A", Server: "S1", Coords: "1,2", X: 1, Y: 2, StartTime: 99,
		IconID: "i1", SortablePrice: 1750,
	}, rows[0])
	assert.Equal(t, model.ItemTypePet, rows[1].Type)
	assert.Equal(t, float64(500), rows[1].SortablePrice)
}

func TestBuildListings_CustomRatio(t *testing.T) {
	resp := model.NewMarketResponse()
	resp.Stalls = []model.MarketStall{{CdKey: "a"}}
	resp.ItemsByCd["a"] = []model.MarketItem{{Name: "Gem", Price: 2, PriceType: model.PriceTypeCrystal}}

	rows := BuildListings(resp, 200)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(400), rows[0].SortablePrice)
}

func TestTimeUntilExpiration(t *testing.T) {
	now := time.Unix(1_000_000, 0)

	assert.Equal(t, "", TimeUntilExpiration(0, now))
	assert.Equal(t, "expired", TimeUntilExpiration(now.Unix()-1, now))
	assert.Equal(t, "2 days left", TimeUntilExpiration(now.Add(50*time.Hour).Unix(), now))
	assert.Equal(t, "3 hours left", TimeUntilExpiration(now.Add(3*time.Hour+5*time.Minute).Unix(), now))
	assert.Equal(t, "7 minutes left", TimeUntilExpiration(now.Add(7*time.Minute+10*time.Second).Unix(), now))
}
