package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"starcg-market-api/internal/model"
)

// rawMarketBody accepts both the flat and the data-nested response shapes.
type rawMarketBody struct {
	Stalls        json.RawMessage `json:"stalls"`
	ItemsByCd     json.RawMessage `json:"itemsByCd"`
	PetsByCd      json.RawMessage `json:"petsByCd"`
	TotalFiltered json.RawMessage `json:"totalFiltered"`
	Data          *rawMarketBody  `json:"data"`
}

// rawObject is one upstream JSON object whose fields may appear under several aliases.
type rawObject map[string]any

// NormalizeMarketResponse decodes an upstream search body into the canonical schema.
// All field aliasing is resolved here and nowhere else.
func NormalizeMarketResponse(body []byte) (*model.MarketResponse, error) {
	var raw rawMarketBody
	if err := decodeJSON(body, &raw); err != nil {
		return nil, err
	}

	nested := raw.Data
	if nested == nil {
		nested = &rawMarketBody{}
	}

	out := model.NewMarketResponse()

	stalls, err := decodeObjects(pickPresent(raw.Stalls, nested.Stalls))
	if err != nil {
		return nil, fmt.Errorf("stalls: %w", err)
	}
	for _, s := range stalls {
		out.Stalls = append(out.Stalls, normalizeStall(s))
	}

	items, err := decodeGroups(pickPresent(raw.ItemsByCd, nested.ItemsByCd))
	if err != nil {
		return nil, fmt.Errorf("itemsByCd: %w", err)
	}
	for cd, group := range items {
		list := make([]model.MarketItem, 0, len(group))
		for _, obj := range group {
			list = append(list, normalizeItem(obj))
		}
		out.ItemsByCd[cd] = list
	}

	pets, err := decodeGroups(pickPresent(raw.PetsByCd, nested.PetsByCd))
	if err != nil {
		return nil, fmt.Errorf("petsByCd: %w", err)
	}
	for cd, group := range pets {
		list := make([]model.MarketPet, 0, len(group))
		for _, obj := range group {
			list = append(list, normalizePet(obj))
		}
		out.PetsByCd[cd] = list
	}

	total := pickPresent(raw.TotalFiltered, nested.TotalFiltered)
	if len(total) > 0 {
		var v any
		if err := decodeJSON(total, &v); err == nil {
			if n, ok := toInt64(v); ok {
				t := int(n)
				out.TotalFiltered = &t
			}
		}
	}

	return out, nil
}

func normalizeStall(o rawObject) model.MarketStall {
	s := model.MarketStall{
		CdKey:  o.str("cdkey", "cdKey", "cd", "CDKEY"),
		Name:   o.str("name", "stall_name", "storename"),
		Server: o.str("server", "server_name"),
	}

	x, xok := o.intVal("X", "x")
	y, yok := o.intVal("Y", "y")
	if (!xok || !yok) && o.has("coords") {
		if cx, cy, ok := parseCoords(o.str("coords")); ok {
			if !xok {
				x = cx
			}
			if !yok {
				y = cy
			}
		}
	}
	s.X, s.Y = int(x), int(y)

	if ts, ok := o.intVal("start_time", "time", "created_at"); ok {
		s.StartTime = ts
	}
	return s
}

func normalizeItem(o rawObject) model.MarketItem {
	price, _ := o.floatVal("price", "Price")
	return model.MarketItem{
		Name:      o.str("ITEM_TRUENAME", "name", "itemName"),
		Price:     price,
		PriceType: normalizePriceType(o.str("pricetype", "priceType")),
		IconID:    o.str("ITEM_BASEIMAGENUMBER"),
	}
}

func normalizePet(o rawObject) model.MarketPet {
	price, _ := o.floatVal("price", "Price")
	return model.MarketPet{
		Name:      o.nonEmptyStr("UserPetName", "Name", "petName"),
		Level:     o.str("Lv", "level"),
		Price:     price,
		PriceType: normalizePriceType(o.str("pricetype", "priceType")),
		IconID:    o.str("Basebaseimgnum"),
	}
}

func normalizePriceType(s string) model.PriceType {
	if strings.TrimSpace(s) == string(model.PriceTypeCrystal) {
		return model.PriceTypeCrystal
	}
	return model.PriceTypeGold
}

func parseCoords(s string) (int64, int64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, errX := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	y, errY := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// pickPresent returns the first candidate that is present and not null.
func pickPresent(candidates ...json.RawMessage) json.RawMessage {
	for _, c := range candidates {
		trimmed := bytes.TrimSpace(c)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		return trimmed
	}
	return nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func decodeObjects(data json.RawMessage) ([]rawObject, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var list []rawObject
	if err := decodeJSON(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// decodeGroups decodes a cdKey -> objects map. PHP encodes an empty map as [],
// so an array decodes to no groups.
func decodeGroups(data json.RawMessage) (map[string][]rawObject, error) {
	if len(data) == 0 || data[0] == '[' {
		return nil, nil
	}
	var groups map[string][]rawObject
	if err := decodeJSON(data, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (o rawObject) has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// lookup returns the first alias holding a non-null value.
func (o rawObject) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (o rawObject) str(keys ...string) string {
	v, ok := o.lookup(keys...)
	if !ok {
		return ""
	}
	return toString(v)
}

// nonEmptyStr skips aliases holding empty strings.
func (o rawObject) nonEmptyStr(keys ...string) string {
	for _, k := range keys {
		if s := o.str(k); s != "" {
			return s
		}
	}
	return ""
}

func (o rawObject) intVal(keys ...string) (int64, bool) {
	v, ok := o.lookup(keys...)
	if !ok {
		return 0, false
	}
	return toInt64(v)
}

func (o rawObject) floatVal(keys ...string) (float64, bool) {
	v, ok := o.lookup(keys...)
	if !ok {
		return 0, false
	}
	return toFloat64(v)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case float64:
		return t, true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	f, ok := toFloat64(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// flexFloat decodes a JSON number or numeric string. Null and blank decode to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v any
	if err := decodeJSON(data, &v); err != nil {
		return err
	}
	if str, isStr := v.(string); v == nil || (isStr && strings.TrimSpace(str) == "") {
		*f = 0
		return nil
	}
	n, ok := toFloat64(v)
	if !ok {
		return fmt.Errorf("cannot decode %s as number", string(data))
	}
	*f = flexFloat(n)
	return nil
}

// flexString decodes a JSON string or number as a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := decodeJSON(data, &v); err != nil {
		return err
	}
	if v == nil {
		*s = ""
		return nil
	}
	*s = flexString(toString(v))
	return nil
}
