package repository

import (
	"gorm.io/gorm"

	"github.com/consultio/psa-api/internal/database"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/utils"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// Create creates a new timesheet entry
func (r *GormTimesheetRepository) Create(ts *models.Timesheet) error {
	return r.db.Create(ts).Error
}

// FindByID finds a timesheet by ID with optional preloading
func (r *GormTimesheetRepository) FindByID(id uint64, preload ...string) (*models.Timesheet, error) {
	var ts models.Timesheet
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&ts, id).Error; err != nil {
		return nil, err
	}

	return &ts, nil
}

// FindByDateRange returns a user's entries with dates in [start, end]
func (r *GormTimesheetRepository) FindByDateRange(userID, start, end string) ([]models.Timesheet, error) {
	var entries []models.Timesheet
	err := r.db.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

// FindByStatus returns entries in a status, optionally limited to a set of
// project IDs, with relations preloaded for the approvals view
func (r *GormTimesheetRepository) FindByStatus(status models.TimesheetStatus, projectIDs []uint64) ([]models.Timesheet, error) {
	var entries []models.Timesheet
	query := r.db.
		Preload("User").
		Preload("Project").
		Preload("Project.ProjectManager").
		Where("status = ?", status)

	if projectIDs != nil {
		if len(projectIDs) == 0 {
			return []models.Timesheet{}, nil
		}
		query = query.Where("project_id IN ?", projectIDs)
	}

	err := query.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// ListByUser returns a page of entries owned by a user plus the total
func (r *GormTimesheetRepository) ListByUser(userID string, params utils.PaginationParams) ([]models.Timesheet, int64, error) {
	query := r.db.Model(&models.Timesheet{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Timesheet
	err := query.
		Scopes(database.Paginate(params)).
		Order("date DESC").
		Find(&entries).Error
	return entries, total, err
}

// ListAll returns a page of all entries plus the total (admin view)
func (r *GormTimesheetRepository) ListAll(params utils.PaginationParams) ([]models.Timesheet, int64, error) {
	query := r.db.Model(&models.Timesheet{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Timesheet
	err := query.
		Scopes(database.Paginate(params)).
		Order("date DESC").
		Find(&entries).Error
	return entries, total, err
}

// Update updates a timesheet entry
func (r *GormTimesheetRepository) Update(ts *models.Timesheet) error {
	return r.db.Save(ts).Error
}

// Delete removes a timesheet entry
func (r *GormTimesheetRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Timesheet{}, id).Error
}

// SumHours sums hours over the entries matching the filter
func (r *GormTimesheetRepository) SumHours(filter HoursFilter) (float64, error) {
	query := r.db.Model(&models.Timesheet{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	var total *float64
	if err := query.Select("SUM(hours)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ProjectHourTotals returns per-project total/billable/approved sums for
// active projects
func (r *GormTimesheetRepository) ProjectHourTotals() ([]ProjectHours, error) {
	var rows []ProjectHours
	err := r.db.Model(&models.Timesheet{}).
		Select(`timesheets.project_id AS project_id,
			projects.name AS project_name,
			SUM(timesheets.hours) AS total_hours,
			SUM(CASE WHEN timesheets.type = 'billable' THEN timesheets.hours ELSE 0 END) AS billable_hours,
			SUM(CASE WHEN timesheets.status = 'approved' THEN timesheets.hours ELSE 0 END) AS approved_hours`).
		Joins("LEFT JOIN projects ON projects.id = timesheets.project_id").
		Where("projects.is_active = ?", true).
		Group("timesheets.project_id, projects.name").
		Order("SUM(timesheets.hours) DESC").
		Scan(&rows).Error
	return rows, err
}
