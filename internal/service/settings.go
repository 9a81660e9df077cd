package service

import (
	"context"
	"sync"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/repository"

	"go.uber.org/zap"
)

// SettingsKey is the storage slot holding AppSettings.
const SettingsKey = "settings"

// SettingsService reads and updates AppSettings.
type SettingsService struct {
	store  repository.KVStore
	mu     sync.Mutex
	logger *zap.SugaredLogger
}

func NewSettingsService(store repository.KVStore, logger *zap.SugaredLogger) *SettingsService {
	return &SettingsService{store: store, logger: logger.Named("settings")}
}

// Get returns the stored settings. Fields never saved keep their defaults.
func (s *SettingsService) Get(ctx context.Context) (model.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update merges upd into the stored settings and persists them.
func (s *SettingsService) Update(ctx context.Context, upd model.SettingsUpdate) (model.AppSettings, error) {
	if upd.UpdateInterval != nil && !upd.UpdateInterval.Valid() {
		return model.AppSettings{}, invalid("updateInterval", "must be one of 30, 60, 120, 360 minutes, got %d", *upd.UpdateInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load(ctx)
	if err != nil {
		return model.AppSettings{}, err
	}
	upd.Apply(&settings)

	if err := saveSlot(ctx, s.store, SettingsKey, settings); err != nil {
		return model.AppSettings{}, err
	}
	s.logger.Infow("Settings updated",
		"autoUpdateEnabled", settings.AutoUpdateEnabled,
		"updateInterval", settings.UpdateInterval,
		"notifyEnabled", settings.NotifyEnabled)
	return settings, nil
}

func (s *SettingsService) load(ctx context.Context) (model.AppSettings, error) {
	settings := model.DefaultSettings()
	if _, err := loadSlot(ctx, s.store, SettingsKey, &settings); err != nil {
		return model.AppSettings{}, err
	}
	if !settings.UpdateInterval.Valid() {
		settings.UpdateInterval = model.DefaultSettings().UpdateInterval
	}
	return settings, nil
}
