package models

import "time"

type NotificationType string

const (
	NotificationTimesheetSubmitted NotificationType = "timesheet_submitted"
	NotificationTimesheetRejected  NotificationType = "timesheet_rejected"
)

type Notification struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	UserID         string           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type           NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title          string           `gorm:"type:varchar(255);not null" json:"title"`
	Message        string           `gorm:"type:text;not null" json:"message"`
	TimesheetID    *uint64          `json:"timesheet_id"`
	ActionRequired bool             `gorm:"default:false" json:"action_required"`
	ActionURL      string           `gorm:"type:varchar(255)" json:"action_url"`
	ActionText     string           `gorm:"type:varchar(100)" json:"action_text"`
	IsRead         bool             `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NotificationDraft is a notification computed by the lifecycle engine before
// it is persisted. Transitions produce drafts; the dispatcher writes them
// after the state change has committed.
type NotificationDraft struct {
	UserID         string
	Type           NotificationType
	Title          string
	Message        string
	TimesheetID    *uint64
	ActionRequired bool
	ActionURL      string
	ActionText     string
}

// ToNotification converts a draft into a persistable row.
func (d NotificationDraft) ToNotification() Notification {
	return Notification{
		UserID:         d.UserID,
		Type:           d.Type,
		Title:          d.Title,
		Message:        d.Message,
		TimesheetID:    d.TimesheetID,
		ActionRequired: d.ActionRequired,
		ActionURL:      d.ActionURL,
		ActionText:     d.ActionText,
	}
}
