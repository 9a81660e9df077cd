package model

// PriceType discriminates the currency a listing is priced in.
type PriceType string

const (
	// PriceTypeGold is the primary in-game currency.
	PriceTypeGold PriceType = "0"
	// PriceTypeCrystal is the premium currency.
	PriceTypeCrystal PriceType = "1"
)

// ItemType tags a listing or tracked entry as an item or a pet.
type ItemType string

const (
	ItemTypeItem ItemType = "item"
	ItemTypePet  ItemType = "pet"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return t == ItemTypeItem || t == ItemTypePet
}

// MarketStall is one vendor listing location.
type MarketStall struct {
	CdKey     string `json:"cdKey"`
	Name      string `json:"name"`
	Server    string `json:"server"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	StartTime int64  `json:"startTime"`
}

// MarketItem is an item priced under a stall.
type MarketItem struct {
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PriceType PriceType `json:"priceType"`
	IconID    string    `json:"iconId"`
}

// MarketPet is a pet priced under a stall.
type MarketPet struct {
	Name      string    `json:"name"`
	Level     string    `json:"level,omitempty"`
	Price     float64   `json:"price"`
	PriceType PriceType `json:"priceType"`
	IconID    string    `json:"iconId"`
}

// MarketResponse is the canonical search result. Keys of ItemsByCd and
// PetsByCd are not guaranteed to match a stall in Stalls.
type MarketResponse struct {
	Stalls        []MarketStall           `json:"stalls"`
	ItemsByCd     map[string][]MarketItem `json:"itemsByCd"`
	PetsByCd      map[string][]MarketPet  `json:"petsByCd"`
	TotalFiltered *int                    `json:"totalFiltered,omitempty"`
}

// NewMarketResponse returns an empty response with non-nil collections.
func NewMarketResponse() *MarketResponse {
	return &MarketResponse{
		Stalls:    []MarketStall{},
		ItemsByCd: make(map[string][]MarketItem),
		PetsByCd:  make(map[string][]MarketPet),
	}
}

// HistoryType selects which records the history endpoint returns.
type HistoryType string

const (
	HistoryTypeAll  HistoryType = "all"
	HistoryTypeItem HistoryType = "item"
	HistoryTypePet  HistoryType = "pet"
)

// ParseHistoryType maps free text to a HistoryType, defaulting to all.
func ParseHistoryType(s string) (HistoryType, bool) {
	switch HistoryType(s) {
	case "", HistoryTypeAll:
		return HistoryTypeAll, true
	case HistoryTypeItem:
		return HistoryTypeItem, true
	case HistoryTypePet:
		return HistoryTypePet, true
	}
	return HistoryTypeAll, false
}

// HistoryTypeFor returns the history filter matching a tracked entry's type.
func HistoryTypeFor(t ItemType) HistoryType {
	if t == ItemTypePet {
		return HistoryTypePet
	}
	return HistoryTypeItem
}

// HistoryRecord is one completed market transaction.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	Price     float64   `json:"price"`
	PriceType PriceType `json:"priceType"`
	Time      int64     `json:"time"`
	TimeText  string    `json:"timeText"`
	Buff      string    `json:"buff"`
	BuyerName string    `json:"buyerName"`
}
