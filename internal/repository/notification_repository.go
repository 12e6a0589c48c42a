package repository

import (
	"github.com/consultio/psa-api/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateBatch persists a set of notifications
func (r *GormNotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

// ListByUser returns a user's notifications, newest first
func (r *GormNotificationRepository) ListByUser(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a notification as read
func (r *GormNotificationRepository) MarkRead(id uint64, userID string) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UnreadCount counts a user's unread notifications
func (r *GormNotificationRepository) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// DeleteTimesheetNotifications clears timesheet-related notifications for a
// user, optionally scoped to one timesheet
func (r *GormNotificationRepository) DeleteTimesheetNotifications(userID string, timesheetID *uint64) error {
	query := r.db.
		Where("user_id = ?", userID).
		Where("type IN ?", []models.NotificationType{
			models.NotificationTimesheetSubmitted,
			models.NotificationTimesheetRejected,
		})
	if timesheetID != nil {
		query = query.Where("timesheet_id = ?", *timesheetID)
	}
	return query.Delete(&models.Notification{}).Error
}
