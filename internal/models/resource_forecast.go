package models

import "time"

// ResourceForecast is one weekly forecast cell per (user, project, week).
// Rows are upserted on the unique key and never deleted.
type ResourceForecast struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_forecast_user_project_week" json:"user_id"`
	ProjectID     uint64    `gorm:"not null;uniqueIndex:idx_forecast_user_project_week" json:"project_id"`
	WeekStarting  string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_forecast_user_project_week" json:"week_starting"`
	ForecastHours float64   `gorm:"not null;default:0" json:"forecast_hours"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
