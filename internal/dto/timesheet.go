package dto

import (
	"github.com/consultio/psa-api/internal/models"
)

// ProjectEntry is one (project, hours) cell inside a day of a week
// submission. TimesheetID references an existing record when editing.
type ProjectEntry struct {
	ProjectID   uint64  `json:"project_id"`
	Hours       float64 `json:"hours" binding:"min=0,max=24"`
	Description string  `json:"description"`
	TimesheetID *uint64 `json:"timesheet_id"`
}

// DaySubmission groups the project entries for a single date.
type DaySubmission struct {
	Date     string         `json:"date" binding:"required,datetime=2006-01-02"`
	Projects []ProjectEntry `json:"projects" binding:"dive"`
}

// WeekSubmission is the typed payload for save and submit: one week of
// entries anchored at a Monday.
type WeekSubmission struct {
	WeekCommencing string          `json:"week_commencing" binding:"required,datetime=2006-01-02"`
	Days           []DaySubmission `json:"days" binding:"required,dive"`
}

// FieldViolation identifies a single invalid field in a week submission.
type FieldViolation struct {
	Date    string `json:"date"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TimesheetDTO represents a timesheet entry in API responses
type TimesheetDTO struct {
	ID              uint64                 `json:"id"`
	UserID          string                 `json:"user_id"`
	ProjectID       uint64                 `json:"project_id"`
	Date            string                 `json:"date"`
	Hours           float64                `json:"hours"`
	Description     string                 `json:"description"`
	Type            models.TimesheetType   `json:"type"`
	Status          models.TimesheetStatus `json:"status"`
	ApprovedBy      *string                `json:"approved_by,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	User            *UserDTO               `json:"user,omitempty"`
	ProjectName     string                 `json:"project_name,omitempty"`
}

// ToTimesheetDTO converts a Timesheet model to TimesheetDTO
func ToTimesheetDTO(ts models.Timesheet) TimesheetDTO {
	d := TimesheetDTO{
		ID:              ts.ID,
		UserID:          ts.UserID,
		ProjectID:       ts.ProjectID,
		Date:            ts.Date,
		Hours:           ts.Hours,
		Description:     ts.Description,
		Type:            ts.Type,
		Status:          ts.Status,
		ApprovedBy:      ts.ApprovedBy,
		RejectionReason: ts.RejectionReason,
	}

	if ts.User.ID != "" {
		user := ToUserDTO(ts.User)
		d.User = &user
	}
	if ts.Project.ID != 0 {
		d.ProjectName = ts.Project.Name
	}

	return d
}

// ToTimesheetDTOs converts a slice of models
func ToTimesheetDTOs(entries []models.Timesheet) []TimesheetDTO {
	out := make([]TimesheetDTO, len(entries))
	for i, ts := range entries {
		out[i] = ToTimesheetDTO(ts)
	}
	return out
}

// WeeklyDay is one day of the weekly view.
type WeeklyDay struct {
	Date       string         `json:"date"`
	Entries    []TimesheetDTO `json:"entries"`
	TotalHours float64        `json:"total_hours"`
}

// WeeklyTimesheet is the view-level aggregate of one user's entries across a
// week. It is computed, never persisted.
type WeeklyTimesheet struct {
	WeekCommencing string                 `json:"week_commencing"`
	Days           []WeeklyDay            `json:"days"`
	TotalHours     float64                `json:"total_hours"`
	Status         models.TimesheetStatus `json:"status"`
}

// statusPriority orders the computed weekly status: a rejection marker beats
// submitted beats approved beats draft.
func statusPriority(ts models.Timesheet) int {
	switch {
	case ts.Status == models.TimesheetStatusRejected,
		ts.Status == models.TimesheetStatusDraft && ts.RejectionReason != "":
		return 4
	case ts.Status == models.TimesheetStatusSubmitted:
		return 3
	case ts.Status == models.TimesheetStatusApproved:
		return 2
	default:
		return 1
	}
}

// ToWeeklyTimesheet groups a week's entries by date and computes the rollup
// total and the highest-priority status.
func ToWeeklyTimesheet(weekCommencing string, dates []string, entries []models.Timesheet) WeeklyTimesheet {
	byDate := make(map[string][]models.Timesheet)
	for _, ts := range entries {
		byDate[ts.Date] = append(byDate[ts.Date], ts)
	}

	week := WeeklyTimesheet{
		WeekCommencing: weekCommencing,
		Status:         models.TimesheetStatusDraft,
	}

	best := 0
	for _, date := range dates {
		day := WeeklyDay{Date: date, Entries: []TimesheetDTO{}}
		for _, ts := range byDate[date] {
			day.Entries = append(day.Entries, ToTimesheetDTO(ts))
			day.TotalHours += ts.Hours
			if p := statusPriority(ts); p > best {
				best = p
				switch p {
				case 4:
					week.Status = models.TimesheetStatusRejected
				case 3:
					week.Status = models.TimesheetStatusSubmitted
				case 2:
					week.Status = models.TimesheetStatusApproved
				}
			}
		}
		week.TotalHours += day.TotalHours
		week.Days = append(week.Days, day)
	}

	return week
}
