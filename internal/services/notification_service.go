package services

import (
	"errors"
	"fmt"

	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService persists and serves notifications. The lifecycle
// engine computes NotificationDrafts as pure data; Dispatch writes them after
// the state change has been persisted.
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Dispatch persists a batch of notification drafts.
func (s *NotificationService) Dispatch(drafts []models.NotificationDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	notifications := make([]models.Notification, len(drafts))
	for i, d := range drafts {
		notifications[i] = d.ToNotification()
	}

	if err := s.repo.CreateBatch(notifications); err != nil {
		return fmt.Errorf("failed to dispatch notifications: %w", err)
	}
	return nil
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(id uint64, userID string) error {
	if err := s.repo.MarkRead(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// UnreadCount counts a user's unread notifications.
func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	count, err := s.repo.UnreadCount(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// ClearTimesheetNotifications removes timesheet notifications for a user,
// optionally scoped to a single timesheet.
func (s *NotificationService) ClearTimesheetNotifications(userID string, timesheetID *uint64) error {
	if err := s.repo.DeleteTimesheetNotifications(userID, timesheetID); err != nil {
		return fmt.Errorf("failed to clear timesheet notifications: %w", err)
	}
	return nil
}
