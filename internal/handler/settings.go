package handler

import (
	"net/http"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/response"
)

// SettingsHandler serves application settings.
type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, settings)
}

// Update handles PUT /api/v1/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd model.SettingsUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, settings)
}
