package services

import (
	"fmt"

	"github.com/consultio/psa-api/internal/dto"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
	"github.com/consultio/psa-api/internal/utils"
)

// UserMetrics is the per-user rollup over a date range.
type UserMetrics struct {
	TotalHours    float64 `json:"total_hours"`
	ApprovedHours float64 `json:"approved_hours"`
	BillableHours float64 `json:"billable_hours"`
	LastWeekHours float64 `json:"last_week_hours"`
}

// ManagerMetrics is the rollup across a manager's projects.
type ManagerMetrics struct {
	TotalHours       float64 `json:"total_hours"`
	ApprovedHours    float64 `json:"approved_hours"`
	PendingApprovals int     `json:"pending_approvals"`
	TotalProjects    int     `json:"total_projects"`
}

// PendingGroup is the approvals view grouped by submitter.
type PendingGroup struct {
	User       dto.UserDTO        `json:"user"`
	Entries    []dto.TimesheetDTO `json:"entries"`
	TotalHours float64            `json:"total_hours"`
}

// MetricsService computes read-only projections over the entity store. There
// is no caching layer: every call reflects the lifecycle engine's current
// state.
type MetricsService struct {
	tsRepo      repository.TimesheetRepository
	projectRepo repository.ProjectRepository
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(tsRepo repository.TimesheetRepository, projectRepo repository.ProjectRepository) *MetricsService {
	return &MetricsService{
		tsRepo:      tsRepo,
		projectRepo: projectRepo,
	}
}

// UserMetrics returns a user's hour totals for [start, end] plus the same
// range shifted one week back for comparison.
func (s *MetricsService) UserMetrics(userID, start, end string) (*UserMetrics, error) {
	total, err := s.tsRepo.SumHours(repository.HoursFilter{
		UserID: &userID, DateFrom: &start, DateTo: &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum total hours: %w", err)
	}

	approvedStatus := models.TimesheetStatusApproved
	approved, err := s.tsRepo.SumHours(repository.HoursFilter{
		UserID: &userID, Status: &approvedStatus, DateFrom: &start, DateTo: &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved hours: %w", err)
	}

	billableType := models.TimesheetTypeBillable
	billable, err := s.tsRepo.SumHours(repository.HoursFilter{
		UserID: &userID, Type: &billableType, DateFrom: &start, DateTo: &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum billable hours: %w", err)
	}

	startDate, err := utils.ParseDate(start)
	if err != nil {
		return nil, err
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		return nil, err
	}
	lastStart := startDate.AddDate(0, 0, -7).Format(utils.DateLayout)
	lastEnd := endDate.AddDate(0, 0, -7).Format(utils.DateLayout)

	lastWeek, err := s.tsRepo.SumHours(repository.HoursFilter{
		UserID: &userID, DateFrom: &lastStart, DateTo: &lastEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum last week hours: %w", err)
	}

	return &UserMetrics{
		TotalHours:    total,
		ApprovedHours: approved,
		BillableHours: billable,
		LastWeekHours: lastWeek,
	}, nil
}

// ProjectMetrics returns per-project total/billable/approved sums for active
// projects.
func (s *MetricsService) ProjectMetrics() ([]repository.ProjectHours, error) {
	rows, err := s.tsRepo.ProjectHourTotals()
	if err != nil {
		return nil, fmt.Errorf("failed to compute project metrics: %w", err)
	}
	return rows, nil
}

// ManagerMetrics returns hour totals and the pending-approvals count across
// the projects a manager owns.
func (s *MetricsService) ManagerMetrics(managerID string) (*ManagerMetrics, error) {
	projectIDs, err := s.projectRepo.ManagedProjectIDs(managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve managed projects: %w", err)
	}
	if len(projectIDs) == 0 {
		return &ManagerMetrics{}, nil
	}

	metrics := &ManagerMetrics{TotalProjects: len(projectIDs)}
	approvedStatus := models.TimesheetStatusApproved

	for _, projectID := range projectIDs {
		pid := projectID

		total, err := s.tsRepo.SumHours(repository.HoursFilter{ProjectID: &pid})
		if err != nil {
			return nil, fmt.Errorf("failed to sum project hours: %w", err)
		}
		metrics.TotalHours += total

		approved, err := s.tsRepo.SumHours(repository.HoursFilter{ProjectID: &pid, Status: &approvedStatus})
		if err != nil {
			return nil, fmt.Errorf("failed to sum approved hours: %w", err)
		}
		metrics.ApprovedHours += approved
	}

	pending, err := s.tsRepo.FindByStatus(models.TimesheetStatusSubmitted, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}
	metrics.PendingApprovals = len(pending)

	return metrics, nil
}

// PendingBySubmitter groups the actor's pending approvals by submitting
// user: manager-scoped for project managers, global for admins.
func (s *MetricsService) PendingBySubmitter(actor Actor) ([]PendingGroup, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}

	var projectIDs []uint64
	if actor.Role == models.RoleProjectManager {
		ids, err := s.projectRepo.ManagedProjectIDs(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve managed projects: %w", err)
		}
		if len(ids) == 0 {
			return []PendingGroup{}, nil
		}
		projectIDs = ids
	}

	entries, err := s.tsRepo.FindByStatus(models.TimesheetStatusSubmitted, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending timesheets: %w", err)
	}

	grouped := make(map[string]*PendingGroup)
	var order []string

	for _, ts := range entries {
		group, ok := grouped[ts.UserID]
		if !ok {
			group = &PendingGroup{User: dto.ToUserDTO(ts.User)}
			grouped[ts.UserID] = group
			order = append(order, ts.UserID)
		}
		group.Entries = append(group.Entries, dto.ToTimesheetDTO(ts))
		group.TotalHours += ts.Hours
	}

	result := make([]PendingGroup, 0, len(order))
	for _, userID := range order {
		result = append(result, *grouped[userID])
	}
	return result, nil
}
