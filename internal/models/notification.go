package models

import "time"

// NotificationKind distinguishes alerts from reminders
type NotificationKind string

const (
	NotificationReminder NotificationKind = "reminder"
	NotificationAlert    NotificationKind = "alert"
)

// Notification is a persisted message for a user
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
	IsRead    bool             `json:"is_read"`
}
