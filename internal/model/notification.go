package model

// NotificationPriority mirrors the host notification priority scale (0-2).
type NotificationPriority int

const (
	PriorityLow    NotificationPriority = 0
	PriorityNormal NotificationPriority = 1
	PriorityHigh   NotificationPriority = 2
)

// Notification is a user-facing message pushed to the notification sink.
type Notification struct {
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Priority  NotificationPriority `json:"priority"`
	ItemName  string               `json:"itemName,omitempty"`
	OldPrice  *float64             `json:"oldPrice,omitempty"`
	NewPrice  *float64             `json:"newPrice,omitempty"`
	CreatedAt int64                `json:"createdAt"`
}
