package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/consultio/psa-api/internal/constants"
	"github.com/consultio/psa-api/internal/dto"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
	"github.com/consultio/psa-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrNotPermitted      = errors.New("not permitted to perform this action")
	ErrInvalidState      = errors.New("transition not allowed from the current status")
	ErrNothingToSubmit   = errors.New("no submittable hours remain for the week")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// ValidationError carries the full batch of field violations found in a week
// submission, so the caller gets every problem in one round-trip.
type ValidationError struct {
	Violations []dto.FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s %s", v.Date, v.Field, v.Message)
	}
	return "invalid week submission: " + strings.Join(msgs, "; ")
}

// Actor is the request-scoped identity every lifecycle operation receives.
// There is no ambient current-user state anywhere below the handlers.
type Actor struct {
	ID   string
	Role models.UserRole
}

// BulkFailure reports one failed id within a bulk operation.
type BulkFailure struct {
	ID     uint64 `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult summarises a best-effort bulk operation. Each id is processed
// independently; callers must re-query for final state.
type BulkResult struct {
	Succeeded int           `json:"succeeded"`
	Failures  []BulkFailure `json:"failures,omitempty"`
}

// TimesheetService is the timesheet lifecycle engine: it owns every status
// transition and computes notification effects as data.
type TimesheetService struct {
	tsRepo      repository.TimesheetRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	dispatcher  *NotificationService
}

// NewTimesheetService creates a new TimesheetService
func NewTimesheetService(
	tsRepo repository.TimesheetRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	dispatcher *NotificationService,
) *TimesheetService {
	return &TimesheetService{
		tsRepo:      tsRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
	}
}

// checkHours collects range violations for every entry in the submission.
func checkHours(week dto.WeekSubmission) []dto.FieldViolation {
	var violations []dto.FieldViolation
	for _, day := range week.Days {
		for _, entry := range day.Projects {
			if entry.Hours < 0 || entry.Hours > constants.MaxDailyHours {
				violations = append(violations, dto.FieldViolation{
					Date:    day.Date,
					Field:   "hours",
					Message: "must be between 0 and 24",
				})
			}
		}
	}
	return violations
}

// Save persists draft edits for a week. Entries referencing an editable
// record are updated (or deleted when hours drop to zero); new entries with
// hours become drafts. Submitted and approved records are never touched.
// Save raises no notifications.
func (s *TimesheetService) Save(actor Actor, week dto.WeekSubmission) ([]models.Timesheet, error) {
	if violations := checkHours(week); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	var saved []models.Timesheet
	for _, day := range week.Days {
		for _, entry := range day.Projects {
			switch {
			case entry.TimesheetID != nil:
				existing, err := s.tsRepo.FindByID(*entry.TimesheetID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return nil, fmt.Errorf("failed to load timesheet %d: %w", *entry.TimesheetID, err)
				}
				if existing.UserID != actor.ID || !existing.Status.Editable() {
					continue
				}

				if entry.Hours > 0 {
					existing.Hours = entry.Hours
					existing.Description = entry.Description
					existing.Status = models.TimesheetStatusDraft
					if err := s.tsRepo.Update(existing); err != nil {
						return nil, fmt.Errorf("failed to update timesheet %d: %w", existing.ID, err)
					}
					saved = append(saved, *existing)
				} else {
					if err := s.tsRepo.Delete(existing.ID); err != nil {
						return nil, fmt.Errorf("failed to delete timesheet %d: %w", existing.ID, err)
					}
				}

			case entry.Hours > 0 && entry.ProjectID != 0:
				ts := models.Timesheet{
					UserID:      actor.ID,
					ProjectID:   entry.ProjectID,
					Date:        day.Date,
					Hours:       entry.Hours,
					Description: entry.Description,
					Type:        models.TimesheetTypeBillable,
					Status:      models.TimesheetStatusDraft,
				}
				if err := s.tsRepo.Create(&ts); err != nil {
					return nil, fmt.Errorf("failed to create timesheet: %w", err)
				}
				saved = append(saved, ts)
			}
		}
	}

	return saved, nil
}

// Submit validates and submits a week of entries, then notifies the managers
// of every touched project. The transition work completes before any
// notification is written.
func (s *TimesheetService) Submit(actor Actor, week dto.WeekSubmission) ([]models.Timesheet, error) {
	violations := checkHours(week)
	for _, day := range week.Days {
		for _, entry := range day.Projects {
			if entry.Hours <= 0 {
				continue
			}
			if entry.ProjectID == 0 {
				violations = append(violations, dto.FieldViolation{
					Date:    day.Date,
					Field:   "project_id",
					Message: "required when hours are recorded",
				})
			}
			if strings.TrimSpace(entry.Description) == "" {
				violations = append(violations, dto.FieldViolation{
					Date:    day.Date,
					Field:   "description",
					Message: "required when hours are recorded",
				})
			}
		}
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	start, end, err := utils.WeekRange(week.WeekCommencing)
	if err != nil {
		return nil, &ValidationError{Violations: []dto.FieldViolation{{
			Field: "week_commencing", Message: "must be a valid date",
		}}}
	}

	existing, err := s.tsRepo.FindByDateRange(actor.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load week entries: %w", err)
	}

	// Repair step: rows still carrying the legacy rejected status would
	// block resubmission, so reset them to draft before matching.
	for i := range existing {
		if existing[i].Status != models.TimesheetStatusRejected {
			continue
		}
		existing[i].Status = models.TimesheetStatusDraft
		existing[i].RejectionReason = ""
		if err := s.tsRepo.Update(&existing[i]); err != nil {
			return nil, fmt.Errorf("failed to reset rejected entry %d: %w", existing[i].ID, err)
		}
	}

	var submitted []models.Timesheet
	managerIDs := make(map[string]struct{})

	for _, day := range week.Days {
		for _, entry := range day.Projects {
			if entry.Hours <= 0 {
				continue
			}

			var draft, alreadySubmitted, approved *models.Timesheet
			for i := range existing {
				ts := &existing[i]
				if ts.Date != day.Date || ts.ProjectID != entry.ProjectID {
					continue
				}
				switch ts.Status {
				case models.TimesheetStatusDraft:
					draft = ts
				case models.TimesheetStatusSubmitted:
					alreadySubmitted = ts
				case models.TimesheetStatusApproved:
					approved = ts
				}
			}

			switch {
			case approved != nil:
				// Approved hours are never resubmitted.
				continue
			case draft != nil:
				draft.Hours = entry.Hours
				draft.Description = entry.Description
				draft.Status = models.TimesheetStatusSubmitted
				if err := s.tsRepo.Update(draft); err != nil {
					return nil, fmt.Errorf("failed to submit timesheet %d: %w", draft.ID, err)
				}
				submitted = append(submitted, *draft)
			case alreadySubmitted == nil:
				ts := models.Timesheet{
					UserID:      actor.ID,
					ProjectID:   entry.ProjectID,
					Date:        day.Date,
					Hours:       entry.Hours,
					Description: entry.Description,
					Type:        models.TimesheetTypeBillable,
					Status:      models.TimesheetStatusSubmitted,
				}
				if err := s.tsRepo.Create(&ts); err != nil {
					return nil, fmt.Errorf("failed to create submitted timesheet: %w", err)
				}
				submitted = append(submitted, ts)
			default:
				// Already submitted for this slot, leave unchanged.
				continue
			}

			project, err := s.projectRepo.FindByID(entry.ProjectID)
			if err == nil && project.ProjectManagerID != nil {
				managerIDs[*project.ProjectManagerID] = struct{}{}
			}
		}
	}

	if len(submitted) == 0 {
		return nil, ErrNothingToSubmit
	}

	drafts := s.submissionNotifications(actor, week.WeekCommencing, managerIDs)
	if err := s.dispatcher.Dispatch(drafts); err != nil {
		return nil, err
	}

	return submitted, nil
}

// submissionNotifications builds one timesheet_submitted draft per distinct
// project manager.
func (s *TimesheetService) submissionNotifications(actor Actor, weekCommencing string, managerIDs map[string]struct{}) []models.NotificationDraft {
	submitterName := "A team member"
	if user, err := s.userRepo.FindByID(actor.ID); err == nil {
		submitterName = user.DisplayName()
	}

	drafts := make([]models.NotificationDraft, 0, len(managerIDs))
	for managerID := range managerIDs {
		drafts = append(drafts, models.NotificationDraft{
			UserID:         managerID,
			Type:           models.NotificationTimesheetSubmitted,
			Title:          "New Timesheet for Approval",
			Message:        fmt.Sprintf("%s submitted a timesheet for week commencing %s", submitterName, weekCommencing),
			ActionRequired: true,
			ActionURL:      "/approvals",
			ActionText:     "Review Timesheet",
		})
	}
	return drafts
}

// Approve marks a submitted entry approved. Approval is silent: no
// notification is raised to the consultant.
func (s *TimesheetService) Approve(actor Actor, id uint64) (*models.Timesheet, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}

	ts, err := s.tsRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}

	if !models.CanTransition(ts.Status, models.TimesheetStatusApproved) {
		return nil, ErrInvalidState
	}

	now := time.Now()
	ts.Status = models.TimesheetStatusApproved
	ts.ApprovedBy = &actor.ID
	ts.ApprovedAt = &now

	if err := s.tsRepo.Update(ts); err != nil {
		return nil, fmt.Errorf("failed to approve timesheet: %w", err)
	}

	return ts, nil
}

// Reject returns a submitted entry to draft with the reason recorded, then
// notifies the owning consultant. Rejection is not a terminal state.
func (s *TimesheetService) Reject(actor Actor, id uint64, reason string) (*models.Timesheet, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	ts, err := s.tsRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}

	if ts.Status != models.TimesheetStatusSubmitted ||
		!models.CanTransition(ts.Status, models.TimesheetStatusDraft) {
		return nil, ErrInvalidState
	}

	ts.Status = models.TimesheetStatusDraft
	ts.RejectionReason = reason
	ts.ApprovedBy = &actor.ID

	if err := s.tsRepo.Update(ts); err != nil {
		return nil, fmt.Errorf("failed to reject timesheet: %w", err)
	}

	projectName := "project"
	if project, perr := s.projectRepo.FindByID(ts.ProjectID); perr == nil {
		projectName = project.Name
	}

	draft := models.NotificationDraft{
		UserID:         ts.UserID,
		Type:           models.NotificationTimesheetRejected,
		Title:          "Timesheet Requires Changes",
		Message:        fmt.Sprintf("Your timesheet for %s has been returned for revision. Reason: %s", projectName, reason),
		TimesheetID:    &ts.ID,
		ActionRequired: true,
		ActionURL:      "/timesheets",
		ActionText:     "Review & Resubmit",
	}
	if err := s.dispatcher.Dispatch([]models.NotificationDraft{draft}); err != nil {
		return nil, err
	}

	return ts, nil
}

// RevertToDraft pulls a submitted entry back to draft without a rejection
// reason, so the owner can edit it before review.
func (s *TimesheetService) RevertToDraft(actor Actor, id uint64) (*models.Timesheet, error) {
	ts, err := s.tsRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}

	if ts.UserID != actor.ID && !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}

	if ts.Status != models.TimesheetStatusSubmitted {
		return nil, ErrInvalidState
	}

	ts.Status = models.TimesheetStatusDraft
	ts.RejectionReason = ""

	if err := s.tsRepo.Update(ts); err != nil {
		return nil, fmt.Errorf("failed to revert timesheet: %w", err)
	}

	return ts, nil
}

// Delete removes an entry. Owners and admins may delete anything that is not
// approved; approved entries are immutable.
func (s *TimesheetService) Delete(actor Actor, id uint64) error {
	ts, err := s.tsRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimesheetNotFound
		}
		return fmt.Errorf("failed to find timesheet: %w", err)
	}

	if ts.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return ErrNotPermitted
	}
	if ts.Status == models.TimesheetStatusApproved {
		return ErrInvalidState
	}

	if err := s.tsRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	return nil
}

// BulkApprove applies Approve to each id independently. Partial failure is
// expected; the result carries the success count and per-id failures.
func (s *TimesheetService) BulkApprove(actor Actor, ids []uint64) BulkResult {
	var result BulkResult
	for _, id := range ids {
		if _, err := s.Approve(actor, id); err != nil {
			result.Failures = append(result.Failures, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}
	return result
}

// BulkReject applies Reject with a shared reason to each id independently.
func (s *TimesheetService) BulkReject(actor Actor, ids []uint64, reason string) (BulkResult, error) {
	if strings.TrimSpace(reason) == "" {
		return BulkResult{}, ErrReasonRequired
	}

	var result BulkResult
	for _, id := range ids {
		if _, err := s.Reject(actor, id, reason); err != nil {
			result.Failures = append(result.Failures, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// Pending returns submitted entries awaiting approval, scoped to the
// requesting manager's projects, or global for admins.
func (s *TimesheetService) Pending(actor Actor) ([]models.Timesheet, error) {
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
			return []models.Timesheet{}, nil
		}
		projectIDs = ids
	}

	entries, err := s.tsRepo.FindByStatus(models.TimesheetStatusSubmitted, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending timesheets: %w", err)
	}
	return entries, nil
}

// List returns a page of entries visible to the actor: everything for
// admins, own entries otherwise.
func (s *TimesheetService) List(actor Actor, params utils.PaginationParams) ([]models.Timesheet, int64, error) {
	if actor.Role == models.RoleAdmin {
		entries, total, err := s.tsRepo.ListAll(params)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
		}
		return entries, total, nil
	}

	entries, total, err := s.tsRepo.ListByUser(actor.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
	}
	return entries, total, nil
}

// WeekView builds the weekly aggregate for one user starting at the given
// Monday.
func (s *TimesheetService) WeekView(actor Actor, weekCommencing string) (*dto.WeeklyTimesheet, error) {
	start, end, err := utils.WeekRange(weekCommencing)
	if err != nil {
		return nil, &ValidationError{Violations: []dto.FieldViolation{{
			Field: "week_commencing", Message: "must be a valid date",
		}}}
	}

	entries, err := s.tsRepo.FindByDateRange(actor.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load week entries: %w", err)
	}

	startDate, _ := utils.ParseDate(start)
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = startDate.AddDate(0, 0, i).Format(utils.DateLayout)
	}

	week := dto.ToWeeklyTimesheet(weekCommencing, dates, entries)
	return &week, nil
}
