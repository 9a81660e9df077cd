package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"starcg-market-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHistory_ExactBuffMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/marketrecord.php", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("type"))
		assert.Equal(t, "Sword", r.URL.Query().Get("search"))
		w.Write([]byte(`{"page":1,"perPage":20,"totalFiltered":3,"logs":[
			{"id":1,"buff":"購買1個：Sword","price":"100","pricetype":"0","time":1700000000,"time_text":"t1","buyname":"amy"},
			{"id":"2","buff":"購買1隻：Sword","price":50,"pricetype":1,"time":"1700000100","time_text":"t2","buyname":"bob"},
			{"id":3,"buff":"購買2個：Sword","price":200,"pricetype":"0","time":1700000200}
		]}`))
	}))
	defer srv.Close()

	records := newTestClient(srv, time.Second).FetchHistory(context.Background(), "Sword", model.HistoryTypeAll, 3)
	require.Len(t, records, 2)

	assert.Equal(t, model.HistoryRecord{
		ID: 1, Price: 100, PriceType: model.PriceTypeGold, Time: 1700000000,
		TimeText: "t1", Buff: "購買1個：Sword", BuyerName: "amy",
	}, records[0])
	assert.Equal(t, int64(2), records[1].ID)
	assert.Equal(t, model.PriceTypeCrystal, records[1].PriceType)
	assert.Equal(t, "購買1隻：Sword", records[1].Buff)
}

func TestFetchHistory_ContainsIsNotEnough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"perPage":20,"logs":[{"id":1,"buff":"購買1個：Sword of Fire","price":1}]}`))
	}))
	defer srv.Close()

	records := newTestClient(srv, time.Second).FetchHistory(context.Background(), "Sword", model.HistoryTypeItem, 1)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchHistory_Pagination(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		n := 2
		if page == 2 {
			n = 1
		}
		logs := ""
		for i := 0; i < n; i++ {
			if i > 0 {
				logs += ","
			}
			logs += fmt.Sprintf(`{"id":%d,"buff":"購買1個：Gem","price":%d}`, page*10+i, page)
		}
		fmt.Fprintf(w, `{"page":%d,"perPage":2,"logs":[%s]}`, page, logs)
	}))
	defer srv.Close()

	records := newTestClient(srv, time.Second).FetchHistory(context.Background(), "Gem", model.HistoryTypeItem, 5)
	assert.Len(t, records, 3)
	// The short second page ends the walk.
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchHistory_PageBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"perPage":1,"logs":[{"id":1,"buff":"購買1個：Gem","price":1}]}`))
	}))
	defer srv.Close()

	records := newTestClient(srv, time.Second).FetchHistory(context.Background(), "Gem", model.HistoryTypeItem, 3)
	assert.Len(t, records, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchHistory_ErrorKeepsCollected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"perPage":1,"logs":[{"id":7,"buff":"購買1隻：Cat","price":5}]}`))
	}))
	defer srv.Close()

	records := newTestClient(srv, time.Second).FetchHistory(context.Background(), "Cat", model.HistoryTypePet, 3)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].ID)
}

func TestFetchHistory_EmptyFirstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"perPage":20,"logs":[]}`))
	}))
	defer srv.Close()

	records := newTestClient(srv, time.Second).FetchHistory(context.Background(), "none", model.HistoryTypeAll, 3)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
