package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

type Client struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

type Project struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	ClientID         *uint64        `json:"client_id"`
	ProjectManagerID *string        `gorm:"type:varchar(36)" json:"project_manager_id"`
	Budget           float64        `json:"budget"`
	Currency         string         `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	HourlyRate       float64        `json:"hourly_rate"`
	StartDate        string         `gorm:"type:varchar(10)" json:"start_date"`
	EndDate          string         `gorm:"type:varchar(10)" json:"end_date"`
	Status           ProjectStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client         *Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProjectManager *User             `gorm:"foreignKey:ProjectManagerID" json:"project_manager,omitempty"`
	RoleTypes      []ProjectRoleType `gorm:"foreignKey:ProjectID" json:"role_types,omitempty"`
	Resources      []ProjectResource `gorm:"foreignKey:ProjectID" json:"resources,omitempty"`
}

// ProjectRoleType is a rate card entry: a named role on a project with an
// associated hourly rate.
type ProjectRoleType struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	ProjectID    uint64    `gorm:"not null" json:"project_id"`
	RoleTypeName string    `gorm:"type:varchar(100);not null" json:"role_type_name"`
	HourlyRate   float64   `gorm:"not null" json:"hourly_rate"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectResource assigns a user to a project at a given role type.
type ProjectResource struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	ProjectID      uint64    `gorm:"not null;index" json:"project_id"`
	UserID         string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	RoleTypeID     uint64    `gorm:"not null" json:"role_type_id"`
	StartDate      string    `gorm:"type:varchar(10)" json:"start_date"`
	EndDate        string    `gorm:"type:varchar(10)" json:"end_date"`
	AllocatedHours float64   `json:"allocated_hours"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Project  Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User     User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RoleType ProjectRoleType `gorm:"foreignKey:RoleTypeID" json:"role_type,omitempty"`
}
