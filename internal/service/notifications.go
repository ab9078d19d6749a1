package service

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/sirupsen/logrus"
)

// NotificationService exposes a user's notifications
type NotificationService struct {
	store NotificationStore
	log   *logrus.Logger
}

// NewNotificationService initializes a notification service
func NewNotificationService(store NotificationStore, log *logrus.Logger) *NotificationService {
	return &NotificationService{store: store, log: log}
}

// List returns all of the user's notifications
func (s *NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	out, err := s.store.ListNotifications(ctx, userID, false)
	if err != nil {
		return nil, persistenceError("list notifications", err)
	}
	return out, nil
}

// ListUnread returns the user's unread notifications
func (s *NotificationService) ListUnread(ctx context.Context, userID int64) ([]models.Notification, error) {
	out, err := s.store.ListNotifications(ctx, userID, true)
	if err != nil {
		return nil, persistenceError("list unread notifications", err)
	}
	return out, nil
}

// MarkRead flags the listed notifications of the user as read and returns how
// many were updated. Ids of other users are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, validationError("notification ids are required")
	}
	n, err := s.store.MarkNotificationsRead(ctx, userID, ids)
	if err != nil {
		return 0, persistenceError("mark notifications read", err)
	}
	s.log.Infof("Marked %d notifications as read for user %d", n, userID)
	return n, nil
}
