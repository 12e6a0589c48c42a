package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
)

func setupMetricsTestDB(t *testing.T) (*gorm.DB, *MetricsService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.Timesheet{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	tsRepo := repository.NewTimesheetRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	return db, NewMetricsService(tsRepo, projectRepo)
}

func seedTimesheet(t *testing.T, db *gorm.DB, userID string, projectID uint64, date string, hours float64, tsType models.TimesheetType, status models.TimesheetStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.Timesheet{
		UserID:      userID,
		ProjectID:   projectID,
		Date:        date,
		Hours:       hours,
		Description: "seeded",
		Type:        tsType,
		Status:      status,
	}).Error)
}

func TestUserMetrics(t *testing.T) {
	db, svc := setupMetricsTestDB(t)

	userID := uuid.NewString()
	project := models.Project{Name: "Alpha", Status: models.ProjectStatusActive, IsActive: true}
	require.NoError(t, db.Create(&project).Error)

	// Current week: 12 total, 8 approved, 8 billable.
	seedTimesheet(t, db, userID, project.ID, "2026-01-12", 8, models.TimesheetTypeBillable, models.TimesheetStatusApproved)
	seedTimesheet(t, db, userID, project.ID, "2026-01-13", 4, models.TimesheetTypeAdmin, models.TimesheetStatusSubmitted)
	// Previous week.
	seedTimesheet(t, db, userID, project.ID, "2026-01-07", 6, models.TimesheetTypeBillable, models.TimesheetStatusApproved)
	// Another user's hours must not leak in.
	seedTimesheet(t, db, uuid.NewString(), project.ID, "2026-01-12", 8, models.TimesheetTypeBillable, models.TimesheetStatusApproved)

	metrics, err := svc.UserMetrics(userID, "2026-01-12", "2026-01-18")
	require.NoError(t, err)
	require.Equal(t, float64(12), metrics.TotalHours)
	require.Equal(t, float64(8), metrics.ApprovedHours)
	require.Equal(t, float64(8), metrics.BillableHours)
	require.Equal(t, float64(6), metrics.LastWeekHours)
}

func TestProjectMetrics(t *testing.T) {
	db, svc := setupMetricsTestDB(t)

	alpha := models.Project{Name: "Alpha", Status: models.ProjectStatusActive, IsActive: true}
	inactive := models.Project{Name: "Retired", Status: models.ProjectStatusCompleted, IsActive: false}
	require.NoError(t, db.Create(&alpha).Error)
	require.NoError(t, db.Create(&inactive).Error)

	userID := uuid.NewString()
	seedTimesheet(t, db, userID, alpha.ID, "2026-01-12", 8, models.TimesheetTypeBillable, models.TimesheetStatusApproved)
	seedTimesheet(t, db, userID, alpha.ID, "2026-01-13", 4, models.TimesheetTypeAdmin, models.TimesheetStatusSubmitted)
	seedTimesheet(t, db, userID, inactive.ID, "2026-01-12", 9, models.TimesheetTypeBillable, models.TimesheetStatusApproved)

	rows, err := svc.ProjectMetrics()
	require.NoError(t, err)
	require.Len(t, rows, 1, "inactive projects are excluded")
	require.Equal(t, alpha.ID, rows[0].ProjectID)
	require.Equal(t, "Alpha", rows[0].ProjectName)
	require.Equal(t, float64(12), rows[0].TotalHours)
	require.Equal(t, float64(8), rows[0].BillableHours)
	require.Equal(t, float64(8), rows[0].ApprovedHours)
}

func TestManagerMetrics(t *testing.T) {
	db, svc := setupMetricsTestDB(t)

	managerID := uuid.NewString()
	mine := models.Project{Name: "Mine", ProjectManagerID: &managerID, Status: models.ProjectStatusActive, IsActive: true}
	other := models.Project{Name: "Other", Status: models.ProjectStatusActive, IsActive: true}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&other).Error)

	userID := uuid.NewString()
	seedTimesheet(t, db, userID, mine.ID, "2026-01-12", 8, models.TimesheetTypeBillable, models.TimesheetStatusApproved)
	seedTimesheet(t, db, userID, mine.ID, "2026-01-13", 4, models.TimesheetTypeBillable, models.TimesheetStatusSubmitted)
	seedTimesheet(t, db, userID, other.ID, "2026-01-12", 16, models.TimesheetTypeBillable, models.TimesheetStatusSubmitted)

	metrics, err := svc.ManagerMetrics(managerID)
	require.NoError(t, err)
	require.Equal(t, 1, metrics.TotalProjects)
	require.Equal(t, float64(12), metrics.TotalHours)
	require.Equal(t, float64(8), metrics.ApprovedHours)
	require.Equal(t, 1, metrics.PendingApprovals)
}

func TestManagerMetrics_NoProjects(t *testing.T) {
	_, svc := setupMetricsTestDB(t)

	metrics, err := svc.ManagerMetrics(uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, 0, metrics.TotalProjects)
	require.Equal(t, float64(0), metrics.TotalHours)
}

func TestPendingBySubmitter(t *testing.T) {
	db, svc := setupMetricsTestDB(t)

	manager := models.User{ID: uuid.NewString(), Email: "pm@consult.io", PasswordHash: "x", Role: models.RoleProjectManager, IsActive: true}
	alice := models.User{ID: uuid.NewString(), Email: "alice@consult.io", FirstName: "Alice", PasswordHash: "x", Role: models.RoleConsultant, IsActive: true}
	bob := models.User{ID: uuid.NewString(), Email: "bob@consult.io", FirstName: "Bob", PasswordHash: "x", Role: models.RoleConsultant, IsActive: true}
	require.NoError(t, db.Create(&manager).Error)
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	project := models.Project{Name: "Alpha", ProjectManagerID: &manager.ID, Status: models.ProjectStatusActive, IsActive: true}
	require.NoError(t, db.Create(&project).Error)

	seedTimesheet(t, db, alice.ID, project.ID, "2026-01-12", 8, models.TimesheetTypeBillable, models.TimesheetStatusSubmitted)
	seedTimesheet(t, db, alice.ID, project.ID, "2026-01-13", 4, models.TimesheetTypeBillable, models.TimesheetStatusSubmitted)
	seedTimesheet(t, db, bob.ID, project.ID, "2026-01-12", 6, models.TimesheetTypeBillable, models.TimesheetStatusSubmitted)

	groups, err := svc.PendingBySubmitter(Actor{ID: manager.ID, Role: manager.Role})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	totals := map[string]float64{}
	for _, g := range groups {
		totals[g.User.ID] = g.TotalHours
	}
	require.Equal(t, float64(12), totals[alice.ID])
	require.Equal(t, float64(6), totals[bob.ID])
}

func TestPendingBySubmitter_ConsultantForbidden(t *testing.T) {
	_, svc := setupMetricsTestDB(t)

	_, err := svc.PendingBySubmitter(Actor{ID: uuid.NewString(), Role: models.RoleConsultant})
	require.ErrorIs(t, err, ErrNotPermitted)
}
