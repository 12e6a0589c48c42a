package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/consultio/psa-api/internal/dto"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
)

// ForecastServiceTestSuite defines the test suite for ForecastService
type ForecastServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ForecastService
}

// SetupTest runs before each test
func (suite *ForecastServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.ProjectRoleType{},
		&models.ProjectResource{},
		&models.Timesheet{},
		&models.ResourceForecast{},
	)
	suite.Require().NoError(err)

	forecastRepo := repository.NewForecastRepository(suite.db)
	tsRepo := repository.NewTimesheetRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	suite.service = NewForecastService(forecastRepo, tsRepo, projectRepo, userRepo)
	// Pin the lock window so tests are not tied to the wall clock.
	suite.service.currentWeekStart = func() string { return "2026-01-05" }
}

// TearDownTest runs after each test
func (suite *ForecastServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ForecastServiceTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *ForecastServiceTestSuite) createTestProject(name string) *models.Project {
	project := &models.Project{
		Name:     name,
		Status:   models.ProjectStatusActive,
		IsActive: true,
	}
	suite.db.Create(project)
	return project
}

func (suite *ForecastServiceTestSuite) assignResource(userID string, projectID uint64) {
	rt := &models.ProjectRoleType{
		ProjectID:    projectID,
		RoleTypeName: "Consultant",
		HourlyRate:   150,
	}
	suite.db.Create(rt)
	suite.db.Create(&models.ProjectResource{
		ProjectID:  projectID,
		UserID:     userID,
		RoleTypeID: rt.ID,
		IsActive:   true,
	})
}

func (suite *ForecastServiceTestSuite) upsertRequest(userID string, projectID uint64, week string, hours float64) dto.UpsertForecastRequest {
	return dto.UpsertForecastRequest{
		UserID:        userID,
		ProjectID:     projectID,
		WeekStarting:  week,
		ForecastHours: hours,
	}
}

// TestUpsertForecast_CreatesCell tests the happy path
func (suite *ForecastServiceTestSuite) TestUpsertForecast_CreatesCell() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)

	f, err := suite.service.UpsertForecast(Actor{ID: manager.ID, Role: manager.Role},
		suite.upsertRequest(user.ID, project.ID, "2026-01-12", 24))
	suite.Require().NoError(err)
	suite.Equal(float64(24), f.ForecastHours)

	hours, err := suite.service.GetForecast(user.ID, project.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(float64(24), hours)
}

// TestUpsertForecast_WeekStartingRoundTrips tests that the week key reloads
// byte for byte so cell lookups keep matching
func (suite *ForecastServiceTestSuite) TestUpsertForecast_WeekStartingRoundTrips() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)

	f, err := suite.service.UpsertForecast(Actor{ID: manager.ID, Role: manager.Role},
		suite.upsertRequest(user.ID, project.ID, "2026-01-12", 24))
	suite.Require().NoError(err)

	var reloaded models.ResourceForecast
	suite.Require().NoError(suite.db.First(&reloaded, f.ID).Error)
	suite.Equal("2026-01-12", reloaded.WeekStarting)
}

// TestUpsertForecast_ConvergesOnRepeat tests that repeated upserts overwrite
// rather than accumulate
func (suite *ForecastServiceTestSuite) TestUpsertForecast_ConvergesOnRepeat() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)

	actor := Actor{ID: manager.ID, Role: manager.Role}
	for _, hours := range []float64{10, 20, 15} {
		_, err := suite.service.UpsertForecast(actor,
			suite.upsertRequest(user.ID, project.ID, "2026-01-12", hours))
		suite.Require().NoError(err)
	}

	var count int64
	suite.db.Model(&models.ResourceForecast{}).Count(&count)
	suite.Equal(int64(1), count, "repeated upserts must converge to one row")

	hours, err := suite.service.GetForecast(user.ID, project.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(float64(15), hours)
}

// TestUpsertForecast_RejectsOutOfRangeHours tests the 0-40 bound
func (suite *ForecastServiceTestSuite) TestUpsertForecast_RejectsOutOfRangeHours() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)

	actor := Actor{ID: manager.ID, Role: manager.Role}

	_, err := suite.service.UpsertForecast(actor,
		suite.upsertRequest(user.ID, project.ID, "2026-01-12", 41))
	suite.ErrorIs(err, ErrForecastHours)

	_, err = suite.service.UpsertForecast(actor,
		suite.upsertRequest(user.ID, project.ID, "2026-01-12", -1))
	suite.ErrorIs(err, ErrForecastHours)

	// 40 exactly is allowed, not clamped.
	f, err := suite.service.UpsertForecast(actor,
		suite.upsertRequest(user.ID, project.ID, "2026-01-12", 40))
	suite.Require().NoError(err)
	suite.Equal(float64(40), f.ForecastHours)
}

// TestUpsertForecast_PastWeekLocked tests the lock window
func (suite *ForecastServiceTestSuite) TestUpsertForecast_PastWeekLocked() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)

	actor := Actor{ID: manager.ID, Role: manager.Role}

	_, err := suite.service.UpsertForecast(actor,
		suite.upsertRequest(user.ID, project.ID, "2025-12-29", 16))
	suite.ErrorIs(err, ErrLockedPeriod)

	// The current week itself is still open.
	_, err = suite.service.UpsertForecast(actor,
		suite.upsertRequest(user.ID, project.ID, "2026-01-05", 16))
	suite.NoError(err)
}

// TestUpsertForecast_RequiresEditorRole tests the role gate, including the
// director role
func (suite *ForecastServiceTestSuite) TestUpsertForecast_RequiresEditorRole() {
	consultant := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	director := suite.createTestUser("director@consult.io", models.RoleDirector)
	project := suite.createTestProject("Alpha")
	suite.assignResource(consultant.ID, project.ID)

	_, err := suite.service.UpsertForecast(Actor{ID: consultant.ID, Role: consultant.Role},
		suite.upsertRequest(consultant.ID, project.ID, "2026-01-12", 8))
	suite.ErrorIs(err, ErrNotPermitted)

	_, err = suite.service.UpsertForecast(Actor{ID: director.ID, Role: director.Role},
		suite.upsertRequest(consultant.ID, project.ID, "2026-01-12", 8))
	suite.NoError(err)
}

// TestUpsertForecast_RequiresAssignment tests that forecasts only exist for
// assigned pairs
func (suite *ForecastServiceTestSuite) TestUpsertForecast_RequiresAssignment() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	// No assignment.

	_, err := suite.service.UpsertForecast(Actor{ID: manager.ID, Role: manager.Role},
		suite.upsertRequest(user.ID, project.ID, "2026-01-12", 8))
	suite.ErrorIs(err, ErrNotProjectMember)
}

// TestGetForecast_ZeroWhenAbsent tests the missing cell default
func (suite *ForecastServiceTestSuite) TestGetForecast_ZeroWhenAbsent() {
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)

	hours, err := suite.service.GetForecast(user.ID, 42, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(float64(0), hours)
}

// TestWeeklyCapacity_Statuses tests every capacity signal threshold
func (suite *ForecastServiceTestSuite) TestWeeklyCapacity_Statuses() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	alpha := suite.createTestProject("Alpha")
	beta := suite.createTestProject("Beta")
	suite.assignResource(user.ID, alpha.ID)
	suite.assignResource(user.ID, beta.ID)
	actor := Actor{ID: manager.ID, Role: manager.Role}

	capacity, err := suite.service.WeeklyCapacity(user.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(dto.CapacityEmpty, capacity.Status)

	_, err = suite.service.UpsertForecast(actor, suite.upsertRequest(user.ID, alpha.ID, "2026-01-12", 20))
	suite.Require().NoError(err)
	capacity, err = suite.service.WeeklyCapacity(user.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(dto.CapacityPartial, capacity.Status)
	suite.Equal(float64(20), capacity.TotalHours)

	_, err = suite.service.UpsertForecast(actor, suite.upsertRequest(user.ID, beta.ID, "2026-01-12", 16))
	suite.Require().NoError(err)
	capacity, err = suite.service.WeeklyCapacity(user.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(dto.CapacityNear, capacity.Status)

	_, err = suite.service.UpsertForecast(actor, suite.upsertRequest(user.ID, beta.ID, "2026-01-12", 20))
	suite.Require().NoError(err)
	capacity, err = suite.service.WeeklyCapacity(user.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(dto.CapacityOver, capacity.Status)
}

// TestActualHours_OnlyApprovedWithinWeek tests the derived actuals
func (suite *ForecastServiceTestSuite) TestActualHours_OnlyApprovedWithinWeek() {
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")

	entries := []models.Timesheet{
		{UserID: user.ID, ProjectID: project.ID, Date: "2026-01-12", Hours: 8, Description: "in week", Type: models.TimesheetTypeBillable, Status: models.TimesheetStatusApproved},
		{UserID: user.ID, ProjectID: project.ID, Date: "2026-01-13", Hours: 4, Description: "submitted only", Type: models.TimesheetTypeBillable, Status: models.TimesheetStatusSubmitted},
		{UserID: user.ID, ProjectID: project.ID, Date: "2026-01-19", Hours: 8, Description: "next week", Type: models.TimesheetTypeBillable, Status: models.TimesheetStatusApproved},
	}
	for i := range entries {
		suite.db.Create(&entries[i])
	}

	actual, err := suite.service.ActualHours(user.ID, project.ID, "2026-01-12")
	suite.Require().NoError(err)
	suite.Equal(float64(8), actual)
}

// TestGrid_GroupsByUserWithActuals tests the grid projection
func (suite *ForecastServiceTestSuite) TestGrid_GroupsByUserWithActuals() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)
	actor := Actor{ID: manager.ID, Role: manager.Role}

	_, err := suite.service.UpsertForecast(actor, suite.upsertRequest(user.ID, project.ID, "2026-01-12", 24))
	suite.Require().NoError(err)
	suite.db.Create(&models.Timesheet{
		UserID: user.ID, ProjectID: project.ID, Date: "2026-01-13", Hours: 8,
		Description: "approved work", Type: models.TimesheetTypeBillable,
		Status: models.TimesheetStatusApproved,
	})

	grid, err := suite.service.Grid(actor)
	suite.Require().NoError(err)
	suite.Require().Len(grid, 1)
	suite.Equal(user.ID, grid[0].User.ID)
	suite.Require().Len(grid[0].Projects, 1)
	suite.Require().Len(grid[0].Projects[0].Forecasts, 1)

	cell := grid[0].Projects[0].Forecasts[0]
	suite.Equal(float64(24), cell.ForecastHours)
	suite.Equal(float64(8), cell.ActualHours)
}

// TestGrid_SurfacesNotes tests that notes saved on a cell come back in the
// grid projection
func (suite *ForecastServiceTestSuite) TestGrid_SurfacesNotes() {
	manager := suite.createTestUser("pm@consult.io", models.RoleProjectManager)
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)
	project := suite.createTestProject("Alpha")
	suite.assignResource(user.ID, project.ID)
	actor := Actor{ID: manager.ID, Role: manager.Role}

	req := suite.upsertRequest(user.ID, project.ID, "2026-01-12", 16)
	req.Notes = "ramping down after go-live"
	_, err := suite.service.UpsertForecast(actor, req)
	suite.Require().NoError(err)

	grid, err := suite.service.Grid(actor)
	suite.Require().NoError(err)
	suite.Require().Len(grid, 1)
	suite.Require().Len(grid[0].Projects, 1)
	suite.Require().Len(grid[0].Projects[0].Forecasts, 1)
	suite.Equal("ramping down after go-live", grid[0].Projects[0].Forecasts[0].Notes)
}

// TestGrid_ConsultantForbidden tests the role gate on the grid view
func (suite *ForecastServiceTestSuite) TestGrid_ConsultantForbidden() {
	user := suite.createTestUser("consultant@consult.io", models.RoleConsultant)

	_, err := suite.service.Grid(Actor{ID: user.ID, Role: user.Role})
	suite.ErrorIs(err, ErrNotPermitted)
}

// TestForecastServiceTestSuite runs the test suite
func TestForecastServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ForecastServiceTestSuite))
}
