package handler

import (
	"context"
	"net/http"
	"time"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/notify"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/response"
)

// NotificationHandler sends test notifications and hosts the push socket.
type NotificationHandler struct {
	notifier notify.Notifier
	hub      *notify.Hub
}

// NewNotificationHandler creates a notification handler. Either argument
// may be nil, in which case the matching endpoint reports
// EXTENSION_NOT_AVAILABLE.
func NewNotificationHandler(notifier notify.Notifier, hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, hub: hub}
}

// Test handles POST /api/v1/notifications/test
func (h *NotificationHandler) Test(w http.ResponseWriter, r *http.Request) {
	if err := h.sendTest(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"sent": true})
}

func (h *NotificationHandler) sendTest(ctx context.Context) error {
	if h == nil || h.notifier == nil {
		return service.ErrNotAvailable
	}
	return h.notifier.Notify(ctx, model.Notification{
		Title:     "StarCG Market",
		Message:   "Test notification: notifications are working.",
		Priority:  model.PriorityNormal,
		CreatedAt: time.Now().UnixMilli(),
	})
}

// WebSocket handles GET /api/v1/notifications/ws
func (h *NotificationHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, service.ErrNotAvailable)
		return
	}
	h.hub.HandleWebSocket(w, r)
}
