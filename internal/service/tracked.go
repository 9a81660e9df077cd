package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/repository"

	"go.uber.org/zap"
)

// TrackedItemsKey is the storage slot holding the tracked-item list.
const TrackedItemsKey = "trackedItems"

// TrackedService owns the tracked-item list. Every operation re-reads the
// slot, mutates it and writes it back while holding mu, so concurrent
// commands and scheduler ticks never lose each other's writes.
type TrackedService struct {
	store  repository.KVStore
	mu     sync.Mutex
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewTrackedService creates the tracked-item registry.
func NewTrackedService(store repository.KVStore, logger *zap.SugaredLogger) *TrackedService {
	return &TrackedService{
		store:  store,
		logger: logger.Named("tracked"),
		now:    time.Now,
	}
}

// List returns the stored list, empty on first run.
func (s *TrackedService) List(ctx context.Context) ([]model.TrackedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add prepends item unless an item with the same name is already tracked,
// in which case the list is left as is. It returns the resulting list.
func (s *TrackedService) Add(ctx context.Context, item model.TrackedItem) ([]model.TrackedItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, invalid("name", "must not be empty")
	}
	if item.Type == "" {
		item.Type = model.ItemTypeItem
	}
	if !item.Type.Valid() {
		return nil, invalid("type", "must be item or pet, got %q", item.Type)
	}
	if item.AddedAt == 0 {
		item.AddedAt = s.now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range items {
		if existing.Name == item.Name {
			return items, nil
		}
	}

	items = append([]model.TrackedItem{item}, items...)
	if err := saveSlot(ctx, s.store, TrackedItemsKey, items); err != nil {
		return nil, err
	}
	s.logger.Infow("Tracking item", "item", item.Name, "type", item.Type)
	return items, nil
}

// Remove drops every item named name and returns the resulting list.
func (s *TrackedService) Remove(ctx context.Context, name string) ([]model.TrackedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]model.TrackedItem, 0, len(items))
	for _, item := range items {
		if item.Name != name {
			kept = append(kept, item)
		}
	}

	if err := saveSlot(ctx, s.store, TrackedItemsKey, kept); err != nil {
		return nil, err
	}
	if len(kept) != len(items) {
		s.logger.Infow("Stopped tracking item", "item", name)
	}
	return kept, nil
}

// Update merges upd into the item named name. found is false when no such
// item exists; the list is then returned unchanged and nothing is written.
func (s *TrackedService) Update(ctx context.Context, name string, upd model.TrackedItemUpdate) (items []model.TrackedItem, found bool, err error) {
	if upd.Type != nil && !upd.Type.Valid() {
		return nil, false, invalid("type", "must be item or pet, got %q", *upd.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err = s.load(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range items {
		if items[i].Name == name {
			upd.Apply(&items[i])
			if err := saveSlot(ctx, s.store, TrackedItemsKey, items); err != nil {
				return nil, false, err
			}
			return items, true, nil
		}
	}
	return items, false, nil
}

// Modify applies fn to the current stored copy of the item named name and
// persists the result in the same critical section. It reports whether the
// item still existed.
func (s *TrackedService) Modify(ctx context.Context, name string, fn func(*model.TrackedItem)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].Name == name {
			fn(&items[i])
			return true, saveSlot(ctx, s.store, TrackedItemsKey, items)
		}
	}
	return false, nil
}

func (s *TrackedService) load(ctx context.Context) ([]model.TrackedItem, error) {
	var items []model.TrackedItem
	if _, err := loadSlot(ctx, s.store, TrackedItemsKey, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.TrackedItem{}
	}
	return items, nil
}
