package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"starcg-market-api/internal/model"
)

// Buff phrases the history endpoint writes for single-unit purchases.
const (
	itemBuffFormat = "購買1個：%s"
	petBuffFormat  = "購買1隻：%s"
)

// DefaultHistoryPages is the page budget used when the caller gives none.
const DefaultHistoryPages = 3

type historyLog struct {
	ID        flexFloat  `json:"id"`
	CdKey     flexString `json:"cdkey"`
	BuyCdKey  flexString `json:"buycdkey"`
	BuyName   flexString `json:"buyname"`
	Buff      flexString `json:"buff"`
	Price     flexFloat  `json:"price"`
	PriceType flexString `json:"pricetype"`
	Time      flexFloat  `json:"time"`
	Check     flexFloat  `json:"check"`
	TimeText  flexString `json:"time_text"`
}

type historyPage struct {
	Page          flexFloat    `json:"page"`
	PerPage       flexFloat    `json:"perPage"`
	TotalFiltered flexFloat    `json:"totalFiltered"`
	Logs          []historyLog `json:"logs"`
}

// FetchHistory collects purchase records for name across at most maxPages
// pages. Only logs whose buff is exactly the single-item or single-pet
// purchase phrase for name are kept. Errors end the walk early and whatever
// was collected is returned; the result is never nil.
func (c *Client) FetchHistory(ctx context.Context, name string, typ model.HistoryType, maxPages int) []model.HistoryRecord {
	if maxPages <= 0 {
		maxPages = DefaultHistoryPages
	}

	records := []model.HistoryRecord{}
	for page := 1; page <= maxPages; page++ {
		data, err := c.fetchHistoryPage(ctx, name, typ, page)
		if err != nil {
			c.logger.Warnw("History page fetch failed", "search", name, "type", typ, "page", page, "error", err)
			break
		}

		if len(data.Logs) == 0 {
			break
		}

		records = append(records, matchHistoryLogs(data.Logs, name)...)

		if len(data.Logs) < int(data.PerPage) {
			break
		}
	}

	c.logger.Debugw("Fetched history", "search", name, "type", typ, "records", len(records))
	return records
}

func (c *Client) fetchHistoryPage(ctx context.Context, name string, typ model.HistoryType, page int) (*historyPage, error) {
	params := url.Values{}
	params.Set("ajax", "1")
	params.Set("page", strconv.Itoa(page))
	params.Set("search", name)
	params.Set("type", string(typ))

	body, err := c.getJSON(ctx, "history", c.historyURL, params)
	if err != nil {
		return nil, err
	}

	var data historyPage
	if err := decodeJSON(body, &data); err != nil {
		return nil, &InvalidResponseError{URL: c.historyURL, Err: err}
	}
	return &data, nil
}

// matchHistoryLogs keeps logs whose buff is exactly a one-unit purchase of name.
func matchHistoryLogs(logs []historyLog, name string) []model.HistoryRecord {
	itemBuff := fmt.Sprintf(itemBuffFormat, name)
	petBuff := fmt.Sprintf(petBuffFormat, name)

	out := make([]model.HistoryRecord, 0, len(logs))
	for _, log := range logs {
		buff := string(log.Buff)
		if buff != itemBuff && buff != petBuff {
			continue
		}
		out = append(out, model.HistoryRecord{
			ID:        int64(log.ID),
			Price:     float64(log.Price),
			PriceType: normalizePriceType(string(log.PriceType)),
			Time:      int64(log.Time),
			TimeText:  string(log.TimeText),
			Buff:      buff,
			BuyerName: string(log.BuyName),
		})
	}
	return out
}
