package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Setup registers with the default Prometheus registry, so it runs once per
// test binary.
func TestSetupExportsRecordedMetrics(t *testing.T) {
	m, handler, err := Setup("starcg-market-api-test")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordHTTPRequest(ctx, http.MethodGet, "/api/v1/tracked", http.StatusOK, 20*time.Millisecond)
	m.RecordCacheHit(ctx, "market")
	m.RecordCacheMiss(ctx, "history")
	m.RecordUpstreamRequest(ctx, "market", "ok")
	m.RecordRefreshRun(ctx, "refreshed")
	m.RecordNotification(ctx, 2)
	m.IncrementConnections(ctx)
	m.DecrementConnections(ctx)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"starcg_http_requests",
		"starcg_cache_hits",
		"starcg_cache_misses",
		"starcg_upstream_requests",
		"starcg_refresh_runs",
		"starcg_notifications",
	} {
		assert.Contains(t, string(body), name)
	}
}
