package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(srv *httptest.Server, timeout time.Duration) *Client {
	return NewClient(ClientConfig{
		MarketURL:  srv.URL + "/market.php",
		HistoryURL: srv.URL + "/marketrecord.php",
		Timeout:    timeout,
	}, zap.NewNop().Sugar(), nil)
}

func TestFetchPage_SendsFixedParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("ajax"))
		assert.Equal(t, "all", q.Get("type"))
		assert.Equal(t, "all", q.Get("server"))
		assert.Equal(t, "0", q.Get("exact"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "龍 劍", q.Get("search"))
		w.Write([]byte(`{"stalls":[{"cdkey":"A"}],"itemsByCd":{},"petsByCd":{},"totalFiltered":1}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv, time.Second).FetchPage(context.Background(), "龍 劍", 2)
	require.NoError(t, err)
	require.Len(t, resp.Stalls, 1)
	assert.Equal(t, "A", resp.Stalls[0].CdKey)
}

func TestFetchPage_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, time.Second).FetchPage(context.Background(), "x", 1)
	var statusErr *UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestFetchPage_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>down</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, time.Second).FetchPage(context.Background(), "x", 1)
	var invalid *InvalidResponseError
	assert.ErrorAs(t, err, &invalid)
}

func TestFetchPage_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(srv, 50*time.Millisecond).FetchPage(context.Background(), "x", 1)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestFetchPage_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(srv, time.Second)
	srv.Close()

	_, err := client.FetchPage(context.Background(), "x", 1)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}
