package repository

import (
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/utils"
)

// TimesheetRepository defines the interface for timesheet data access
type TimesheetRepository interface {
	// Create creates a new timesheet entry
	Create(ts *models.Timesheet) error

	// FindByID finds a timesheet by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Timesheet, error)

	// FindByDateRange returns a user's entries with dates in [start, end]
	FindByDateRange(userID, start, end string) ([]models.Timesheet, error)

	// FindByStatus returns entries in a status, optionally limited to a set
	// of project IDs, with relations preloaded for the approvals view
	FindByStatus(status models.TimesheetStatus, projectIDs []uint64) ([]models.Timesheet, error)

	// ListByUser returns a page of entries owned by a user plus the total
	ListByUser(userID string, params utils.PaginationParams) ([]models.Timesheet, int64, error)

	// ListAll returns a page of all entries plus the total (admin view)
	ListAll(params utils.PaginationParams) ([]models.Timesheet, int64, error)

	// Update updates a timesheet entry
	Update(ts *models.Timesheet) error

	// Delete removes a timesheet entry
	Delete(id uint64) error

	// SumHours sums hours over the entries matching the filter
	SumHours(filter HoursFilter) (float64, error)

	// ProjectHourTotals returns per-project total/billable/approved sums for
	// active projects
	ProjectHourTotals() ([]ProjectHours, error)
}

// HoursFilter narrows SumHours aggregation
type HoursFilter struct {
	UserID    *string
	ProjectID *uint64
	Status    *models.TimesheetStatus
	Type      *models.TimesheetType
	DateFrom  *string
	DateTo    *string
}

// ProjectHours is a per-project rollup row
type ProjectHours struct {
	ProjectID     uint64  `json:"project_id"`
	ProjectName   string  `json:"project_name"`
	TotalHours    float64 `json:"total_hours"`
	BillableHours float64 `json:"billable_hours"`
	ApprovedHours float64 `json:"approved_hours"`
}

// ForecastRepository defines the interface for resource forecast data access
type ForecastRepository interface {
	// Find returns the forecast row for the unique cell, if any
	Find(userID string, projectID uint64, weekStarting string) (*models.ResourceForecast, error)

	// Upsert inserts the row or updates forecast hours on the unique
	// (user, project, week) key
	Upsert(f *models.ResourceForecast) error

	// ListByUserWeek returns all of a user's forecasts for one week
	ListByUserWeek(userID, weekStarting string) ([]models.ResourceForecast, error)

	// ListByUserProject returns all forecasts for a (user, project) pair
	ListByUserProject(userID string, projectID uint64) ([]models.ResourceForecast, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(p *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List returns active projects
	List() ([]models.Project, error)

	// ManagedProjectIDs returns the IDs of projects managed by a user
	ManagedProjectIDs(managerID string) ([]uint64, error)

	// AddRoleType adds a rate card entry to a project
	AddRoleType(rt *models.ProjectRoleType) error

	// AddResource assigns a user to a project at a role type
	AddResource(res *models.ProjectResource) error

	// ListResourcesByUser returns a user's active project assignments
	ListResourcesByUser(userID string) ([]models.ProjectResource, error)

	// HasResource reports whether a user is assigned to a project
	HasResource(projectID uint64, userID string) (bool, error)

	// CreateClient creates a new client
	CreateClient(c *models.Client) error

	// ListClients returns active clients
	ListClients() ([]models.Client, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// CreateBatch persists a set of notifications
	CreateBatch(notifications []models.Notification) error

	// ListByUser returns a user's notifications, newest first
	ListByUser(userID string) ([]models.Notification, error)

	// MarkRead flags a notification as read
	MarkRead(id uint64, userID string) error

	// UnreadCount counts a user's unread notifications
	UnreadCount(userID string) (int64, error)

	// DeleteTimesheetNotifications clears timesheet-related notifications
	// for a user, optionally scoped to one timesheet
	DeleteTimesheetNotifications(userID string, timesheetID *uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
