package models

import (
	"time"

	"gorm.io/gorm"
)

type TimesheetStatus string

const (
	TimesheetStatusDraft     TimesheetStatus = "draft"
	TimesheetStatusSubmitted TimesheetStatus = "submitted"
	TimesheetStatusApproved  TimesheetStatus = "approved"
	// TimesheetStatusRejected is a legacy value. Rejection now reverts an
	// entry to draft with RejectionReason set, but rows written before that
	// change can still carry this status and must remain editable.
	TimesheetStatusRejected TimesheetStatus = "rejected"
)

type TimesheetType string

const (
	TimesheetTypeBillable    TimesheetType = "billable"
	TimesheetTypeNonBillable TimesheetType = "non_billable"
	TimesheetTypeAdmin       TimesheetType = "admin"
	TimesheetTypeTraining    TimesheetType = "training"
)

// timesheetTransitions is the authoritative transition table. All status
// changes go through CanTransition; nothing else may write the status field.
var timesheetTransitions = map[TimesheetStatus][]TimesheetStatus{
	TimesheetStatusDraft:     {TimesheetStatusSubmitted},
	TimesheetStatusSubmitted: {TimesheetStatusApproved, TimesheetStatusDraft},
	TimesheetStatusApproved:  {},
	TimesheetStatusRejected:  {TimesheetStatusDraft, TimesheetStatusSubmitted},
}

// CanTransition reports whether a timesheet may move from one status to
// another.
func CanTransition(from, to TimesheetStatus) bool {
	for _, allowed := range timesheetTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Editable reports whether the entry may still be modified or deleted by its
// owner. Submitted and approved entries are immutable to consultants.
func (s TimesheetStatus) Editable() bool {
	return s == TimesheetStatusDraft || s == TimesheetStatusRejected
}

type Timesheet struct {
	ID                uint64          `gorm:"primarykey" json:"id"`
	UserID            string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ProjectID         uint64          `gorm:"not null;index" json:"project_id"`
	ProjectResourceID *uint64         `json:"project_resource_id"`
	Date              string          `gorm:"type:varchar(10);not null;index" json:"date"`
	Hours             float64         `gorm:"not null" json:"hours"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Type              TimesheetType   `gorm:"type:varchar(20);not null;default:'billable'" json:"type"`
	Status            TimesheetStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ApprovedBy        *string         `gorm:"type:varchar(36)" json:"approved_by"`
	ApprovedAt        *time.Time      `json:"approved_at"`
	RejectionReason   string          `gorm:"type:text" json:"rejection_reason"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	User            User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project         Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ProjectResource *ProjectResource `gorm:"foreignKey:ProjectResourceID" json:"project_resource,omitempty"`
	Approver        *User            `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}
