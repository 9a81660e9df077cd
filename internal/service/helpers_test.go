package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/repository"

	"go.uber.org/zap"
)

var testLogger = zap.NewNop().Sugar()

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, &repository.StorageError{Op: "get", Backend: "broken", Key: key, Err: errors.New("disk gone")}
}
func (brokenStore) Set(ctx context.Context, key string, value []byte) error {
	return &repository.StorageError{Op: "set", Backend: "broken", Key: key, Err: errors.New("disk gone")}
}
func (brokenStore) Ping(ctx context.Context) error { return errors.New("disk gone") }
func (brokenStore) Close() error                   { return nil }

// stubHistory returns canned records per name and counts calls.
type stubHistory struct {
	mu      sync.Mutex
	records map[string][]model.HistoryRecord
	calls   []string
}

func (s *stubHistory) FetchHistory(ctx context.Context, name string, typ model.HistoryType, maxPages int) []model.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	return append([]model.HistoryRecord{}, s.records[name]...)
}

type capturingNotifier struct {
	mu  sync.Mutex
	got []model.Notification
}

func (c *capturingNotifier) Notify(ctx context.Context, n model.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, n)
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }

func prices(ps ...float64) []model.HistoryRecord {
	out := make([]model.HistoryRecord, len(ps))
	for i, p := range ps {
		out[i] = model.HistoryRecord{ID: int64(i + 1), Price: p, PriceType: model.PriceTypeGold}
	}
	return out
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
