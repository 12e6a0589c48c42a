package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleProjectManager UserRole = "project_manager"
	RoleConsultant     UserRole = "consultant"
	RoleDirector       UserRole = "director"
)

// CanApproveTimesheets reports whether the role may approve or reject
// submitted timesheets.
func (r UserRole) CanApproveTimesheets() bool {
	return r == RoleAdmin || r == RoleProjectManager
}

// CanEditForecasts reports whether the role may edit resource forecasts.
func (r UserRole) CanEditForecasts() bool {
	return r == RoleAdmin || r == RoleProjectManager || r == RoleDirector
}

type User struct {
	ID                  string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Email               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName           string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName            string         `gorm:"type:varchar(100)" json:"last_name"`
	PasswordHash        string         `gorm:"type:varchar(255);not null" json:"-"`
	Role                UserRole       `gorm:"type:varchar(20);not null;default:'consultant'" json:"role"`
	HourlyRate          float64        `json:"hourly_rate"`
	WeeklyCapacityHours int            `gorm:"default:40" json:"weekly_capacity_hours"`
	IsActive            bool           `json:"is_active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Timesheets  []Timesheet       `gorm:"foreignKey:UserID" json:"-"`
	Assignments []ProjectResource `gorm:"foreignKey:UserID" json:"-"`
}

// DisplayName returns the user's name for notification messages.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
