package dto

import "github.com/consultio/psa-api/internal/models"

// CapacityStatus is a display-only signal comparing a user's weekly forecast
// total against the nominal 40-hour ceiling.
type CapacityStatus string

const (
	CapacityOver    CapacityStatus = "over_capacity"
	CapacityNear    CapacityStatus = "near_capacity"
	CapacityPartial CapacityStatus = "partial"
	CapacityEmpty   CapacityStatus = "empty"
)

// UpsertForecastRequest is the payload for creating or updating one forecast
// cell.
type UpsertForecastRequest struct {
	UserID        string  `json:"user_id" binding:"required"`
	ProjectID     uint64  `json:"project_id" binding:"required"`
	WeekStarting  string  `json:"week_starting" binding:"required,datetime=2006-01-02"`
	ForecastHours float64 `json:"forecast_hours"`
	Notes         string  `json:"notes"`
}

// ForecastCellDTO is one forecast row with its derived actuals.
type ForecastCellDTO struct {
	UserID        string  `json:"user_id"`
	ProjectID     uint64  `json:"project_id"`
	WeekStarting  string  `json:"week_starting"`
	ForecastHours float64 `json:"forecast_hours"`
	ActualHours   float64 `json:"actual_hours"`
	Notes         string  `json:"notes,omitempty"`
}

// ToForecastCellDTO converts a forecast row plus derived actual hours.
func ToForecastCellDTO(f models.ResourceForecast, actual float64) ForecastCellDTO {
	return ForecastCellDTO{
		UserID:        f.UserID,
		ProjectID:     f.ProjectID,
		WeekStarting:  f.WeekStarting,
		ForecastHours: f.ForecastHours,
		ActualHours:   actual,
		Notes:         f.Notes,
	}
}

// WeeklyCapacityDTO is a user's forecast total for one week with its display
// signal.
type WeeklyCapacityDTO struct {
	UserID       string         `json:"user_id"`
	WeekStarting string         `json:"week_starting"`
	TotalHours   float64        `json:"total_hours"`
	Status       CapacityStatus `json:"status"`
}

// UserForecastDTO groups one user's forecast cells per project for the grid
// view.
type UserForecastDTO struct {
	User     UserDTO              `json:"user"`
	Projects []ProjectForecastDTO `json:"projects"`
}

// ProjectForecastDTO is one project's forecast cells for a user.
type ProjectForecastDTO struct {
	ProjectID   uint64            `json:"project_id"`
	ProjectName string            `json:"project_name"`
	Forecasts   []ForecastCellDTO `json:"forecasts"`
}
