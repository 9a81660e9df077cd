package handler

import (
	"net/http"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/apierror"
	"starcg-market-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// TrackedHandler serves the tracked-item registry.
type TrackedHandler struct {
	tracked *service.TrackedService
}

// NewTrackedHandler creates a new tracked-item handler.
func NewTrackedHandler(tracked *service.TrackedService) *TrackedHandler {
	return &TrackedHandler{tracked: tracked}
}

// List handles GET /api/v1/tracked
func (h *TrackedHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.tracked.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, items)
}

// Add handles POST /api/v1/tracked
func (h *TrackedHandler) Add(w http.ResponseWriter, r *http.Request) {
	var item model.TrackedItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, err)
		return
	}

	items, err := h.tracked.Add(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, items)
}

// Update handles PATCH /api/v1/tracked/{name}
func (h *TrackedHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var upd model.TrackedItemUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, err)
		return
	}

	items, found, err := h.tracked.Update(r.Context(), name, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, apierror.ItemNotFound("tracked item not found: "+name))
		return
	}
	response.OK(w, items)
}

// Remove handles DELETE /api/v1/tracked/{name}
func (h *TrackedHandler) Remove(w http.ResponseWriter, r *http.Request) {
	items, err := h.tracked.Remove(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, items)
}
