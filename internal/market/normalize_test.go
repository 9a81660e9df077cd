package market

import (
	"testing"

	"starcg-market-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMarketResponse_FlatShape(t *testing.T) {
	body := []byte(`{
		"stalls": [{"cdkey": "A1", "name": "Shop", "server": "S1", "X": 10, "Y": "20", "start_time": 1700000000}],
		"itemsByCd": {"A1": [{"ITEM_TRUENAME": "Sword", "price": "1500", "pricetype": 0, "ITEM_BASEIMAGENUMBER": 27001}]},
		"petsByCd": {"A1": [{"UserPetName": "", "Name": "Wolf", "Lv": 12, "price": 3, "pricetype": "1", "Basebaseimgnum": "100"}]},
		"totalFiltered": "1"
	}`)

	resp, err := NormalizeMarketResponse(body)
	require.NoError(t, err)

	require.Len(t, resp.Stalls, 1)
	assert.Equal(t, model.MarketStall{CdKey: "A1", Name: "Shop", Server: "S1", X: 10, Y: 20, StartTime: 1700000000}, resp.Stalls[0])

	require.Len(t, resp.ItemsByCd["A1"], 1)
	assert.Equal(t, model.MarketItem{Name: "Sword", Price: 1500, PriceType: model.PriceTypeGold, IconID: "27001"}, resp.ItemsByCd["A1"][0])

	require.Len(t, resp.PetsByCd["A1"], 1)
	pet := resp.PetsByCd["A1"][0]
	assert.Equal(t, "Wolf", pet.Name)
	assert.Equal(t, "12", pet.Level)
	assert.Equal(t, model.PriceTypeCrystal, pet.PriceType)
	assert.Equal(t, "100", pet.IconID)

	require.NotNil(t, resp.TotalFiltered)
	assert.Equal(t, 1, *resp.TotalFiltered)
}

func TestNormalizeMarketResponse_NestedShape(t *testing.T) {
	body := []byte(`{
		"success": true,
		"data": {
			"stalls": [{"cdKey": "B2", "stall_name": "Nested", "server_name": "S2", "coords": "5, 7", "time": 42}],
			"itemsByCd": {"B2": [{"name": "Shield", "Price": 9, "priceType": "1"}]},
			"petsByCd": [],
			"totalFiltered": 30
		}
	}`)

	resp, err := NormalizeMarketResponse(body)
	require.NoError(t, err)

	require.Len(t, resp.Stalls, 1)
	assert.Equal(t, model.MarketStall{CdKey: "B2", Name: "Nested", Server: "S2", X: 5, Y: 7, StartTime: 42}, resp.Stalls[0])
	assert.Equal(t, "Shield", resp.ItemsByCd["B2"][0].Name)
	assert.Equal(t, model.PriceTypeCrystal, resp.ItemsByCd["B2"][0].PriceType)
	assert.NotNil(t, resp.PetsByCd)
	assert.Empty(t, resp.PetsByCd)
	require.NotNil(t, resp.TotalFiltered)
	assert.Equal(t, 30, *resp.TotalFiltered)
}

func TestNormalizeMarketResponse_TopLevelWins(t *testing.T) {
	body := []byte(`{
		"stalls": [{"cd": "TOP"}],
		"data": {"stalls": [{"cd": "NESTED"}]}
	}`)

	resp, err := NormalizeMarketResponse(body)
	require.NoError(t, err)
	require.Len(t, resp.Stalls, 1)
	assert.Equal(t, "TOP", resp.Stalls[0].CdKey)
	assert.Nil(t, resp.TotalFiltered)
}

func TestNormalizeMarketResponse_MissingFields(t *testing.T) {
	resp, err := NormalizeMarketResponse([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, resp.Stalls)
	assert.Empty(t, resp.Stalls)
	assert.Empty(t, resp.ItemsByCd)
	assert.Empty(t, resp.PetsByCd)
	assert.Nil(t, resp.TotalFiltered)
}

func TestNormalizeMarketResponse_Malformed(t *testing.T) {
	_, err := NormalizeMarketResponse([]byte(`<html>maintenance</html>`))
	assert.Error(t, err)

	_, err = NormalizeMarketResponse([]byte(`{"stalls": "nope"}`))
	assert.Error(t, err)
}

func TestFlexFloat_Blank(t *testing.T) {
	var page historyPage
	require.NoError(t, decodeJSON([]byte(`{"perPage": "", "page": "2", "logs": []}`), &page))
	assert.Equal(t, flexFloat(0), page.PerPage)
	assert.Equal(t, flexFloat(2), page.Page)
}
