package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"starcg-market-api/internal/metrics"
	"starcg-market-api/internal/model"
	"starcg-market-api/internal/notify"

	"go.uber.org/zap"
)

// RefreshConfig holds configuration for the price refresh scheduler.
type RefreshConfig struct {
	// TickInterval is how often a tick runs. Default: 1 minute
	TickInterval time.Duration

	// TickTimeout bounds the work of a single tick. Default: 5 minutes
	TickTimeout time.Duration

	// HistoryPages is the history page budget per refresh. Default: 3
	HistoryPages int
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		TickInterval: time.Minute,
		TickTimeout:  5 * time.Minute,
		HistoryPages: 3,
	}
}

// Tick outcomes.
const (
	RefreshDisabled  = "disabled"
	RefreshEmpty     = "empty"
	RefreshIdle      = "idle"
	RefreshNoHistory = "no_history"
	RefreshUpdated   = "refreshed"
	RefreshVanished  = "vanished"
	RefreshFailed    = "failed"
)

// RefreshResult describes what one tick did.
type RefreshResult struct {
	Status   string   `json:"status"`
	Item     string   `json:"item,omitempty"`
	Records  int      `json:"records"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	AvgPrice *float64 `json:"avgPrice,omitempty"`
	Notified bool     `json:"notified"`
}

// RefreshScheduler refreshes the price statistics of at most one stale
// tracked item per tick.
type RefreshScheduler struct {
	tracked  *TrackedService
	settings *SettingsService
	history  HistoryFetcher
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	config   RefreshConfig
	now      func() time.Time

	ticker    *time.Ticker
	stopCh    chan struct{}
	isRunning bool
	mu        sync.Mutex
	inflight  sync.WaitGroup
}

// NewRefreshScheduler creates a new refresh scheduler. notifier may be nil.
func NewRefreshScheduler(
	tracked *TrackedService,
	settings *SettingsService,
	history HistoryFetcher,
	notifier notify.Notifier,
	config RefreshConfig,
	logger *zap.SugaredLogger,
	m *metrics.Metrics,
) *RefreshScheduler {
	defaults := DefaultRefreshConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.TickTimeout <= 0 {
		config.TickTimeout = defaults.TickTimeout
	}
	if config.HistoryPages <= 0 {
		config.HistoryPages = defaults.HistoryPages
	}

	return &RefreshScheduler{
		tracked:  tracked,
		settings: settings,
		history:  history,
		notifier: notifier,
		metrics:  m,
		logger:   logger.Named("refresh"),
		config:   config,
		now:      time.Now,
	}
}

// Start begins ticking. A stopped scheduler may be started again.
func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.TickInterval)
	s.stopCh = make(chan struct{})
	// The loop holds its own count, so per-tick Adds never start from zero
	// while Stop is waiting.
	s.inflight.Add(1)
	go s.run(s.ticker, s.stopCh)
	s.mu.Unlock()

	s.logger.Infow("Started", "interval", s.config.TickInterval, "historyPages", s.config.HistoryPages)
}

// run is the main loop. Each tick runs in its own goroutine so a slow
// upstream never delays the next tick; overlapping ticks are serialized
// only at the registry.
func (s *RefreshScheduler) run(ticker *time.Ticker, stopCh <-chan struct{}) {
	defer s.inflight.Done()
	for {
		select {
		case <-ticker.C:
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				s.runTick()
			}()
		case <-stopCh:
			s.logger.Infow("Stopped")
			return
		}
	}
}

// runTick executes one tick with its own timeout and never panics.
func (s *RefreshScheduler) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.TickTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("Tick panicked", "panic", r)
			s.record(ctx, RefreshFailed)
		}
	}()

	result, err := s.Tick(ctx)
	if err != nil {
		s.logger.Errorw("Tick failed", "error", err)
		return
	}
	if result.Status == RefreshUpdated || result.Status == RefreshNoHistory {
		s.logger.Infow("Tick complete", "status", result.Status, "item", result.Item, "records", result.Records, "notified", result.Notified)
	} else {
		s.logger.Debugw("Tick complete", "status", result.Status)
	}
}

// Stop stops the scheduler and waits for the loop and in-flight ticks.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if s.isRunning {
		s.ticker.Stop()
		close(s.stopCh)
		s.isRunning = false
	}
	s.mu.Unlock()
	s.inflight.Wait()
}

// RunNow triggers an immediate tick.
func (s *RefreshScheduler) RunNow(ctx context.Context) (RefreshResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.TickTimeout)
	defer cancel()
	return s.Tick(ctx)
}

// Tick refreshes the single most stale eligible tracked item, if any.
func (s *RefreshScheduler) Tick(ctx context.Context) (RefreshResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.record(ctx, RefreshFailed)
		return RefreshResult{Status: RefreshFailed}, fmt.Errorf("read settings: %w", err)
	}
	if !settings.AutoUpdateEnabled {
		return s.done(ctx, RefreshResult{Status: RefreshDisabled}), nil
	}

	items, err := s.tracked.List(ctx)
	if err != nil {
		s.record(ctx, RefreshFailed)
		return RefreshResult{Status: RefreshFailed}, fmt.Errorf("read tracked items: %w", err)
	}
	if len(items) == 0 {
		return s.done(ctx, RefreshResult{Status: RefreshEmpty}), nil
	}

	now := s.now()
	target, ok := mostStale(items, now, settings.UpdateInterval.Duration())
	if !ok {
		return s.done(ctx, RefreshResult{Status: RefreshIdle}), nil
	}

	records := s.history.FetchHistory(ctx, target.Name, model.HistoryTypeFor(target.Type), s.config.HistoryPages)
	nowMs := now.UnixMilli()
	result := RefreshResult{Item: target.Name, Records: len(records)}

	stats, hasStats := ComputePriceStats(records)
	var oldMin *float64
	found, err := s.tracked.Modify(ctx, target.Name, func(item *model.TrackedItem) {
		item.LastUpdated = &nowMs
		if !hasStats {
			return
		}
		oldMin = item.MinPrice
		minPrice, avgPrice := stats.MinPrice, stats.AvgPrice
		item.MinPrice = &minPrice
		item.AvgPrice = &avgPrice
		item.HistoryData = records
	})
	if err != nil {
		s.record(ctx, RefreshFailed)
		return RefreshResult{Status: RefreshFailed, Item: target.Name}, fmt.Errorf("persist %q: %w", target.Name, err)
	}
	if !found {
		result.Status = RefreshVanished
		return s.done(ctx, result), nil
	}
	if !hasStats {
		result.Status = RefreshNoHistory
		return s.done(ctx, result), nil
	}

	result.Status = RefreshUpdated
	result.MinPrice = &stats.MinPrice
	result.AvgPrice = &stats.AvgPrice

	if settings.NotifyEnabled && oldMin != nil && stats.MinPrice < *oldMin {
		result.Notified = s.notifyPriceDrop(ctx, target.Name, *oldMin, stats.MinPrice)
	}
	return s.done(ctx, result), nil
}

// mostStale picks the eligible item with the oldest lastUpdated; items never
// updated come first. An item is eligible once its age reaches interval.
func mostStale(items []model.TrackedItem, now time.Time, interval time.Duration) (model.TrackedItem, bool) {
	nowMs := now.UnixMilli()
	eligible := make([]model.TrackedItem, 0, len(items))
	for _, item := range items {
		if item.LastUpdated == nil || time.Duration(nowMs-*item.LastUpdated)*time.Millisecond >= interval {
			eligible = append(eligible, item)
		}
	}
	if len(eligible) == 0 {
		return model.TrackedItem{}, false
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return lastUpdatedOf(eligible[i]) < lastUpdatedOf(eligible[j])
	})
	return eligible[0], true
}

func lastUpdatedOf(item model.TrackedItem) int64 {
	if item.LastUpdated == nil {
		return 0
	}
	return *item.LastUpdated
}

func (s *RefreshScheduler) notifyPriceDrop(ctx context.Context, name string, oldPrice, newPrice float64) bool {
	if s.notifier == nil {
		s.logger.Warnw("Price dropped but no notifier configured", "item", name)
		return false
	}

	n := model.Notification{
		Title:     "Price drop: " + name,
		Message:   fmt.Sprintf("%s lowest price dropped from %s to %s", name, formatPrice(oldPrice), formatPrice(newPrice)),
		Priority:  model.PriorityHigh,
		ItemName:  name,
		OldPrice:  &oldPrice,
		NewPrice:  &newPrice,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warnw("Price drop notification failed", "item", name, "error", err)
		return false
	}
	return true
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func (s *RefreshScheduler) done(ctx context.Context, result RefreshResult) RefreshResult {
	s.record(ctx, result.Status)
	return result
}

func (s *RefreshScheduler) record(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.RecordRefreshRun(ctx, status)
	}
}
