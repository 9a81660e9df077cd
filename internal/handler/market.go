package handler

import (
	"net/http"
	"strconv"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/apierror"
	"starcg-market-api/pkg/response"
)

// MarketHandler serves market lookups.
type MarketHandler struct {
	market *service.MarketService
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(market *service.MarketService) *MarketHandler {
	return &MarketHandler{market: market}
}

// Search handles GET /api/v1/market/search?search=
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	resp, err := h.market.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, resp)
}

// Page handles GET /api/v1/market/page?search=&page=
func (h *MarketHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.market.FetchPage(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, resp)
}

// All handles GET /api/v1/market/all?search=
func (h *MarketHandler) All(w http.ResponseWriter, r *http.Request) {
	resp, err := h.market.FetchAll(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, resp)
}

// History handles GET /api/v1/market/history?search=&type=&maxPages=
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ, ok := model.ParseHistoryType(q.Get("type"))
	if !ok {
		writeError(w, apierror.InvalidInput("type must be all, item or pet"))
		return
	}
	maxPages, err := intParam(r, "maxPages", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.market.FetchHistory(r.Context(), q.Get("search"), typ, maxPages)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, records)
}

// Listings handles GET /api/v1/market/listings?search=&ratio=
func (h *MarketHandler) Listings(w http.ResponseWriter, r *http.Request) {
	ratio := model.DefaultCrystalRatio
	if raw := r.URL.Query().Get("ratio"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeError(w, apierror.InvalidInput("ratio must be a positive number"))
			return
		}
		ratio = v
	}

	rows, err := h.market.Listings(r.Context(), r.URL.Query().Get("search"), ratio)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, rows)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierror.InvalidInput(name + " must be an integer")
	}
	return v, nil
}
