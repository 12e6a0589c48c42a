package services

import (
	"errors"
	"fmt"

	"github.com/consultio/psa-api/internal/dto"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectNameEmpty = errors.New("project name is required")
	ErrClientNameEmpty  = errors.New("client name is required")
	ErrRoleTypeNotFound = errors.New("role type does not belong to the project")
)

// RoleCard is the per-role view of a project's rate card: the role, its
// rate, and the users assigned at that role.
type RoleCard struct {
	RoleTypeID   uint64        `json:"role_type_id"`
	RoleTypeName string        `json:"role_type_name"`
	HourlyRate   float64       `json:"hourly_rate"`
	Members      []dto.UserDTO `json:"members"`
}

// ProjectService manages projects, rate cards, and resource assignments.
// The lifecycle engine uses it to resolve managers; the forecast ledger to
// know which (user, project) pairs are valid.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name             string
	Description      string
	ClientID         *uint64
	ProjectManagerID *string
	Budget           float64
	Currency         string
	HourlyRate       float64
	StartDate        string
	EndDate          string
}

// Create creates a new project. Only admins and project managers may create
// projects.
func (s *ProjectService) Create(actor Actor, input CreateProjectInput) (*models.Project, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}
	if input.Name == "" {
		return nil, ErrProjectNameEmpty
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	project := &models.Project{
		Name:             input.Name,
		Description:      input.Description,
		ClientID:         input.ClientID,
		ProjectManagerID: input.ProjectManagerID,
		Budget:           input.Budget,
		Currency:         currency,
		HourlyRate:       input.HourlyRate,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Status:           models.ProjectStatusActive,
		IsActive:         true,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// List returns active projects.
func (s *ProjectService) List() ([]models.Project, error) {
	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Get returns a project with its relations loaded.
func (s *ProjectService) Get(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id,
		"Client", "ProjectManager", "RoleTypes", "Resources", "Resources.User", "Resources.RoleType")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// RoleCards joins a project's role types with its resource assignments.
func (s *ProjectService) RoleCards(projectID uint64) ([]RoleCard, error) {
	project, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}

	cards := make([]RoleCard, 0, len(project.RoleTypes))
	for _, rt := range project.RoleTypes {
		card := RoleCard{
			RoleTypeID:   rt.ID,
			RoleTypeName: rt.RoleTypeName,
			HourlyRate:   rt.HourlyRate,
			Members:      []dto.UserDTO{},
		}
		for _, res := range project.Resources {
			if res.RoleTypeID == rt.ID && res.IsActive {
				card.Members = append(card.Members, dto.ToUserDTO(res.User))
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MyAssignments returns the caller's active project assignments with their
// projects and role types preloaded.
func (s *ProjectService) MyAssignments(actor Actor) ([]models.ProjectResource, error) {
	resources, err := s.projectRepo.ListResourcesByUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return resources, nil
}

// CreateClient creates a new client. Only admins and project managers may
// create clients.
func (s *ProjectService) CreateClient(actor Actor, name, email, contactPerson string) (*models.Client, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}
	if name == "" {
		return nil, ErrClientNameEmpty
	}

	client := &models.Client{
		Name:          name,
		Email:         email,
		ContactPerson: contactPerson,
		IsActive:      true,
	}
	if err := s.projectRepo.CreateClient(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// ListClients returns active clients.
func (s *ProjectService) ListClients() ([]models.Client, error) {
	clients, err := s.projectRepo.ListClients()
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// AddRoleType adds a rate card entry to a project.
func (s *ProjectService) AddRoleType(actor Actor, projectID uint64, name string, rate float64, description string) (*models.ProjectRoleType, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}

	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	rt := &models.ProjectRoleType{
		ProjectID:    projectID,
		RoleTypeName: name,
		HourlyRate:   rate,
		Description:  description,
	}
	if err := s.projectRepo.AddRoleType(rt); err != nil {
		return nil, fmt.Errorf("failed to add role type: %w", err)
	}
	return rt, nil
}

// AssignResource assigns a user to a project at an existing role type.
func (s *ProjectService) AssignResource(actor Actor, projectID uint64, userID string, roleTypeID uint64, allocatedHours float64) (*models.ProjectResource, error) {
	if !actor.Role.CanApproveTimesheets() {
		return nil, ErrNotPermitted
	}

	project, err := s.projectRepo.FindByID(projectID, "RoleTypes")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	validRole := false
	for _, rt := range project.RoleTypes {
		if rt.ID == roleTypeID {
			validRole = true
			break
		}
	}
	if !validRole {
		return nil, ErrRoleTypeNotFound
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	res := &models.ProjectResource{
		ProjectID:      projectID,
		UserID:         userID,
		RoleTypeID:     roleTypeID,
		AllocatedHours: allocatedHours,
		IsActive:       true,
	}
	if err := s.projectRepo.AddResource(res); err != nil {
		return nil, fmt.Errorf("failed to assign resource: %w", err)
	}
	return res, nil
}
