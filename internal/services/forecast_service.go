package services

import (
	"errors"
	"fmt"

	"github.com/consultio/psa-api/internal/constants"
	"github.com/consultio/psa-api/internal/dto"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
	"github.com/consultio/psa-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrLockedPeriod     = errors.New("weeks before the current week are locked")
	ErrForecastHours    = errors.New("forecast hours must be between 0 and 40")
	ErrNotProjectMember = errors.New("user is not assigned to the project")
)

// ForecastService is the resource forecast ledger: weekly per-user
// per-project hour forecasts with locked past weeks and derived actuals.
type ForecastService struct {
	forecastRepo repository.ForecastRepository
	tsRepo       repository.TimesheetRepository
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository

	// currentWeekStart is injectable so lock-window tests are not tied to
	// the wall clock. Defaults to utils.CurrentWeekStart.
	currentWeekStart func() string
}

// NewForecastService creates a new ForecastService
func NewForecastService(
	forecastRepo repository.ForecastRepository,
	tsRepo repository.TimesheetRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
) *ForecastService {
	return &ForecastService{
		forecastRepo:     forecastRepo,
		tsRepo:           tsRepo,
		projectRepo:      projectRepo,
		userRepo:         userRepo,
		currentWeekStart: defaultCurrentWeekStart,
	}
}

func defaultCurrentWeekStart() string {
	return utils.CurrentWeekStart().Format(utils.DateLayout)
}

// weekBounds returns the inclusive [start, end] dates of the week, validating
// the week-start string.
func weekBounds(weekStarting string) (string, string, error) {
	start, end, err := utils.WeekRange(weekStarting)
	if err != nil {
		return "", "", &ValidationError{Violations: []dto.FieldViolation{{
			Field: "week_starting", Message: "must be a valid date",
		}}}
	}
	return start, end, nil
}

// GetForecast returns the forecast hours for a cell, zero when absent.
func (s *ForecastService) GetForecast(userID string, projectID uint64, weekStarting string) (float64, error) {
	f, err := s.forecastRepo.Find(userID, projectID, weekStarting)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load forecast: %w", err)
	}
	return f.ForecastHours, nil
}

// UpsertForecast creates or overwrites one forecast cell. Hours outside
// [0,40] are rejected, not clamped. Weeks before the Monday of the current
// week are immutable.
func (s *ForecastService) UpsertForecast(actor Actor, req dto.UpsertForecastRequest) (*models.ResourceForecast, error) {
	if !actor.Role.CanEditForecasts() {
		return nil, ErrNotPermitted
	}
	if req.ForecastHours < 0 || req.ForecastHours > constants.MaxWeeklyForecast {
		return nil, ErrForecastHours
	}
	if utils.IsPastWeek(req.WeekStarting, s.currentWeekStart()) {
		return nil, ErrLockedPeriod
	}

	assigned, err := s.projectRepo.HasResource(req.ProjectID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotProjectMember
	}

	f := &models.ResourceForecast{
		UserID:        req.UserID,
		ProjectID:     req.ProjectID,
		WeekStarting:  req.WeekStarting,
		ForecastHours: req.ForecastHours,
		Notes:         req.Notes,
	}
	if err := s.forecastRepo.Upsert(f); err != nil {
		return nil, fmt.Errorf("failed to upsert forecast: %w", err)
	}

	return f, nil
}

// WeeklyCapacity sums a user's forecast hours across all projects for one
// week. The result is a display signal only, never an enforced limit.
func (s *ForecastService) WeeklyCapacity(userID, weekStarting string) (*dto.WeeklyCapacityDTO, error) {
	forecasts, err := s.forecastRepo.ListByUserWeek(userID, weekStarting)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}

	var total float64
	for _, f := range forecasts {
		total += f.ForecastHours
	}

	return &dto.WeeklyCapacityDTO{
		UserID:       userID,
		WeekStarting: weekStarting,
		TotalHours:   total,
		Status:       capacityStatus(total),
	}, nil
}

func capacityStatus(total float64) dto.CapacityStatus {
	switch {
	case total >= float64(constants.NominalWeeklyHours):
		return dto.CapacityOver
	case total >= constants.NearCapacityThreshold:
		return dto.CapacityNear
	case total > 0:
		return dto.CapacityPartial
	default:
		return dto.CapacityEmpty
	}
}

// ActualHours derives the approved timesheet hours for a (user, project)
// pair within one week. Actuals are computed, never stored.
func (s *ForecastService) ActualHours(userID string, projectID uint64, weekStarting string) (float64, error) {
	start, end, err := weekBounds(weekStarting)
	if err != nil {
		return 0, err
	}

	status := models.TimesheetStatusApproved
	total, err := s.tsRepo.SumHours(repository.HoursFilter{
		UserID:    &userID,
		ProjectID: &projectID,
		Status:    &status,
		DateFrom:  &start,
		DateTo:    &end,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum actual hours: %w", err)
	}
	return total, nil
}

// Grid returns every assigned (user, project) pair with its forecast cells
// and derived actuals, for the forecasting view.
func (s *ForecastService) Grid(actor Actor) ([]dto.UserForecastDTO, error) {
	if !actor.Role.CanEditForecasts() {
		return nil, ErrNotPermitted
	}

	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	grouped := make(map[string]*dto.UserForecastDTO)
	var order []string

	for _, project := range projects {
		full, err := s.projectRepo.FindByID(project.ID, "Resources", "Resources.User")
		if err != nil {
			return nil, fmt.Errorf("failed to load project %d: %w", project.ID, err)
		}

		for _, res := range full.Resources {
			if !res.IsActive {
				continue
			}

			forecasts, err := s.forecastRepo.ListByUserProject(res.UserID, project.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list forecasts: %w", err)
			}

			cells := make([]dto.ForecastCellDTO, 0, len(forecasts))
			for _, f := range forecasts {
				actual, err := s.ActualHours(f.UserID, f.ProjectID, f.WeekStarting)
				if err != nil {
					return nil, err
				}
				cells = append(cells, dto.ToForecastCellDTO(f, actual))
			}

			entry, ok := grouped[res.UserID]
			if !ok {
				entry = &dto.UserForecastDTO{User: dto.ToUserDTO(res.User)}
				grouped[res.UserID] = entry
				order = append(order, res.UserID)
			}
			entry.Projects = append(entry.Projects, dto.ProjectForecastDTO{
				ProjectID:   project.ID,
				ProjectName: project.Name,
				Forecasts:   cells,
			})
		}
	}

	result := make([]dto.UserForecastDTO, 0, len(order))
	for _, userID := range order {
		result = append(result, *grouped[userID])
	}
	return result, nil
}
