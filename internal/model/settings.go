package model

import "time"

// UpdateInterval is the minimum age, in minutes, before a tracked item is refreshed.
type UpdateInterval int

// Allowed update intervals.
const (
	UpdateInterval30m  UpdateInterval = 30
	UpdateInterval60m  UpdateInterval = 60
	UpdateInterval120m UpdateInterval = 120
	UpdateInterval360m UpdateInterval = 360
)

// Valid reports whether i is one of the allowed intervals.
func (i UpdateInterval) Valid() bool {
	switch i {
	case UpdateInterval30m, UpdateInterval60m, UpdateInterval120m, UpdateInterval360m:
		return true
	}
	return false
}

// Duration converts the interval to a time.Duration.
func (i UpdateInterval) Duration() time.Duration {
	return time.Duration(i) * time.Minute
}

// AppSettings is process-wide configuration read at the start of each scheduler tick.
type AppSettings struct {
	AutoUpdateEnabled bool           `json:"autoUpdateEnabled"`
	UpdateInterval    UpdateInterval `json:"updateInterval"`
	NotifyEnabled     bool           `json:"notifyEnabled"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() AppSettings {
	return AppSettings{
		AutoUpdateEnabled: false,
		UpdateInterval:    UpdateInterval60m,
		NotifyEnabled:     true,
	}
}

// SettingsUpdate is a partial settings change.
type SettingsUpdate struct {
	AutoUpdateEnabled *bool           `json:"autoUpdateEnabled,omitempty"`
	UpdateInterval    *UpdateInterval `json:"updateInterval,omitempty"`
	NotifyEnabled     *bool           `json:"notifyEnabled,omitempty"`
}

// Apply merges u into s.
func (u SettingsUpdate) Apply(s *AppSettings) {
	if u.AutoUpdateEnabled != nil {
		s.AutoUpdateEnabled = *u.AutoUpdateEnabled
	}
	if u.UpdateInterval != nil {
		s.UpdateInterval = *u.UpdateInterval
	}
	if u.NotifyEnabled != nil {
		s.NotifyEnabled = *u.NotifyEnabled
	}
}
