package service

import (
	"context"
	"testing"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Defaults(t *testing.T) {
	s := NewSettingsService(repository.NewMemoryStore(), testLogger)
	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)
}

func TestSettings_PartialStoredValueKeepsDefaults(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), SettingsKey, []byte(`{"autoUpdateEnabled":true}`)))

	got, err := NewSettingsService(store, testLogger).Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.AutoUpdateEnabled)
	assert.Equal(t, model.UpdateInterval60m, got.UpdateInterval)
	assert.True(t, got.NotifyEnabled)
}

func TestSettings_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewSettingsService(repository.NewMemoryStore(), testLogger)

	enabled := true
	interval := model.UpdateInterval30m
	got, err := s.Update(ctx, model.SettingsUpdate{AutoUpdateEnabled: &enabled, UpdateInterval: &interval})
	require.NoError(t, err)
	assert.Equal(t, model.AppSettings{AutoUpdateEnabled: true, UpdateInterval: 30, NotifyEnabled: true}, got)

	notify := false
	got, err = s.Update(ctx, model.SettingsUpdate{NotifyEnabled: &notify})
	require.NoError(t, err)
	assert.Equal(t, model.AppSettings{AutoUpdateEnabled: true, UpdateInterval: 30, NotifyEnabled: false}, got)

	reread, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, reread)
}

func TestSettings_RejectsUnknownInterval(t *testing.T) {
	s := NewSettingsService(repository.NewMemoryStore(), testLogger)
	bad := model.UpdateInterval(45)

	_, err := s.Update(context.Background(), model.SettingsUpdate{UpdateInterval: &bad})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "updateInterval", verr.Field)
}
