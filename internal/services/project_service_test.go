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

func setupProjectTestDB(t *testing.T) (*gorm.DB, *ProjectService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.ProjectRoleType{},
		&models.ProjectResource{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	return db, NewProjectService(projectRepo, userRepo)
}

func projectTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@consult.io",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestProjectService_Create(t *testing.T) {
	db, svc := setupProjectTestDB(t)
	admin := projectTestUser(t, db, models.RoleAdmin)

	project, err := svc.Create(Actor{ID: admin.ID, Role: admin.Role}, CreateProjectInput{
		Name:   "Migration",
		Budget: 50000,
	})
	require.NoError(t, err)
	require.Equal(t, "USD", project.Currency)
	require.Equal(t, models.ProjectStatusActive, project.Status)
	require.True(t, project.IsActive)
}

func TestProjectService_Create_ConsultantForbidden(t *testing.T) {
	db, svc := setupProjectTestDB(t)
	consultant := projectTestUser(t, db, models.RoleConsultant)

	_, err := svc.Create(Actor{ID: consultant.ID, Role: consultant.Role}, CreateProjectInput{Name: "Nope"})
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestProjectService_RoleCards(t *testing.T) {
	db, svc := setupProjectTestDB(t)
	admin := projectTestUser(t, db, models.RoleAdmin)
	member := projectTestUser(t, db, models.RoleConsultant)
	actor := Actor{ID: admin.ID, Role: admin.Role}

	project, err := svc.Create(actor, CreateProjectInput{Name: "Migration"})
	require.NoError(t, err)

	senior, err := svc.AddRoleType(actor, project.ID, "Senior Consultant", 200, "")
	require.NoError(t, err)
	_, err = svc.AddRoleType(actor, project.ID, "Analyst", 120, "")
	require.NoError(t, err)

	_, err = svc.AssignResource(actor, project.ID, member.ID, senior.ID, 40)
	require.NoError(t, err)

	cards, err := svc.RoleCards(project.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	require.Equal(t, "Senior Consultant", cards[0].RoleTypeName)
	require.Len(t, cards[0].Members, 1)
	require.Equal(t, member.ID, cards[0].Members[0].ID)
	require.Empty(t, cards[1].Members)
}

func TestProjectService_MyAssignments(t *testing.T) {
	db, svc := setupProjectTestDB(t)
	admin := projectTestUser(t, db, models.RoleAdmin)
	member := projectTestUser(t, db, models.RoleConsultant)
	actor := Actor{ID: admin.ID, Role: admin.Role}

	alpha, err := svc.Create(actor, CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)
	beta, err := svc.Create(actor, CreateProjectInput{Name: "Beta"})
	require.NoError(t, err)

	seniorAlpha, err := svc.AddRoleType(actor, alpha.ID, "Senior Consultant", 200, "")
	require.NoError(t, err)
	seniorBeta, err := svc.AddRoleType(actor, beta.ID, "Senior Consultant", 200, "")
	require.NoError(t, err)

	_, err = svc.AssignResource(actor, alpha.ID, member.ID, seniorAlpha.ID, 40)
	require.NoError(t, err)
	ended, err := svc.AssignResource(actor, beta.ID, member.ID, seniorBeta.ID, 20)
	require.NoError(t, err)
	require.NoError(t, db.Model(ended).Update("is_active", false).Error)

	assignments, err := svc.MyAssignments(Actor{ID: member.ID, Role: member.Role})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, "Alpha", assignments[0].Project.Name)
	require.Equal(t, "Senior Consultant", assignments[0].RoleType.RoleTypeName)
}

func TestProjectService_AssignResource_UnknownRoleType(t *testing.T) {
	db, svc := setupProjectTestDB(t)
	admin := projectTestUser(t, db, models.RoleAdmin)
	member := projectTestUser(t, db, models.RoleConsultant)
	actor := Actor{ID: admin.ID, Role: admin.Role}

	project, err := svc.Create(actor, CreateProjectInput{Name: "Migration"})
	require.NoError(t, err)

	_, err = svc.AssignResource(actor, project.ID, member.ID, 999, 40)
	require.ErrorIs(t, err, ErrRoleTypeNotFound)
}

func TestProjectService_Clients(t *testing.T) {
	db, svc := setupProjectTestDB(t)
	admin := projectTestUser(t, db, models.RoleAdmin)
	actor := Actor{ID: admin.ID, Role: admin.Role}

	_, err := svc.CreateClient(actor, "Acme Corp", "ops@acme.test", "Jo Bloggs")
	require.NoError(t, err)

	_, err = svc.CreateClient(actor, "", "", "")
	require.ErrorIs(t, err, ErrClientNameEmpty)

	clients, err := svc.ListClients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, "Acme Corp", clients[0].Name)
}
