package model

// DefaultCrystalRatio is the gold value of one unit of premium currency.
const DefaultCrystalRatio float64 = 175

// Listing is a flattened row joining a stall with one of its items or pets.
type Listing struct {
	Type          ItemType  `json:"type"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	PriceType     PriceType `json:"priceType"`
	StallName     string    `json:"stallName"`
	Server        string    `json:"server"`
	Coords        string    `json:"coords"`
	X             int       `json:"x"`
	Y             int       `json:"y"`
	StartTime     int64     `json:"startTime"`
	IconID        string    `json:"iconId"`
	SortablePrice float64   `json:"sortablePrice"`
}
