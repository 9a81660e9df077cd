package handler

import (
	"net/http"
	"runtime"
	"time"

	"starcg-market-api/internal/notify"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/response"
)

// AdminHandler handles operational HTTP requests.
type AdminHandler struct {
	market    *service.MarketService
	tracked   *service.TrackedService
	scheduler *service.RefreshScheduler
	hub       *notify.Hub
	storeType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. scheduler and hub may be nil.
func NewAdminHandler(
	market *service.MarketService,
	tracked *service.TrackedService,
	scheduler *service.RefreshScheduler,
	hub *notify.Hub,
	storeType string,
) *AdminHandler {
	return &AdminHandler{
		market:    market,
		tracked:   tracked,
		scheduler: scheduler,
		hub:       hub,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	if cacheStats, err := h.market.CacheStats(ctx); err == nil {
		stats["cache"] = map[string]interface{}{
			"market_entries":  cacheStats.MarketEntries,
			"history_entries": cacheStats.HistoryEntries,
			"status":          "ok",
		}
	} else {
		stats["cache"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	if items, err := h.tracked.List(ctx); err == nil {
		stats["tracked_items"] = len(items)
	} else {
		stats["tracked_items"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	if h.hub != nil {
		stats["websocket_clients"] = h.hub.ClientCount()
	}
	stats["scheduler_enabled"] = h.scheduler != nil

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// ClearCache handles POST /api/v1/admin/cache/clear
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.market.ClearCache(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"cleared": true})
}

// Refresh handles POST /api/v1/admin/refresh by running one scheduler tick.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		writeError(w, service.ErrNotAvailable)
		return
	}
	result, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, result)
}
