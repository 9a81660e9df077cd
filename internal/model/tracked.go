package model

// TrackedItem is a listing name the user monitors for price changes.
// Name is the identity key and is compared case-sensitively.
type TrackedItem struct {
	Name        string          `json:"name"`
	Type        ItemType        `json:"type"`
	AddedAt     int64           `json:"addedAt"`
	Price       *float64        `json:"price,omitempty"`
	PriceType   PriceType       `json:"priceType,omitempty"`
	Stall       string          `json:"stall,omitempty"`
	MinPrice    *float64        `json:"minPrice,omitempty"`
	AvgPrice    *float64        `json:"avgPrice,omitempty"`
	LastUpdated *int64          `json:"lastUpdated,omitempty"`
	HistoryData []HistoryRecord `json:"historyData,omitempty"`
}

// TrackedItemUpdate carries the fields to merge into a tracked item.
// Nil fields are left untouched.
type TrackedItemUpdate struct {
	Type        *ItemType       `json:"type,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	PriceType   *PriceType      `json:"priceType,omitempty"`
	Stall       *string         `json:"stall,omitempty"`
	MinPrice    *float64        `json:"minPrice,omitempty"`
	AvgPrice    *float64        `json:"avgPrice,omitempty"`
	LastUpdated *int64          `json:"lastUpdated,omitempty"`
	HistoryData []HistoryRecord `json:"historyData,omitempty"`
}

// Apply merges the non-nil fields of u into item.
func (u TrackedItemUpdate) Apply(item *TrackedItem) {
	if u.Type != nil {
		item.Type = *u.Type
	}
	if u.Price != nil {
		item.Price = u.Price
	}
	if u.PriceType != nil {
		item.PriceType = *u.PriceType
	}
	if u.Stall != nil {
		item.Stall = *u.Stall
	}
	if u.MinPrice != nil {
		item.MinPrice = u.MinPrice
	}
	if u.AvgPrice != nil {
		item.AvgPrice = u.AvgPrice
	}
	if u.LastUpdated != nil {
		item.LastUpdated = u.LastUpdated
	}
	if u.HistoryData != nil {
		item.HistoryData = u.HistoryData
	}
}
