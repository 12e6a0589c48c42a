package repository

import (
	"github.com/consultio/psa-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var p models.Project
	query := r.db

	for _, pre := range preload {
		query = query.Preload(pre)
	}

	if err := query.First(&p, id).Error; err != nil {
		return nil, err
	}

	return &p, nil
}

// List returns active projects
func (r *GormProjectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Preload("Client").
		Preload("ProjectManager").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

// ManagedProjectIDs returns the IDs of projects managed by a user
func (r *GormProjectRepository) ManagedProjectIDs(managerID string) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Project{}).
		Where("project_manager_id = ?", managerID).
		Pluck("id", &ids).Error
	return ids, err
}

// AddRoleType adds a rate card entry to a project
func (r *GormProjectRepository) AddRoleType(rt *models.ProjectRoleType) error {
	return r.db.Create(rt).Error
}

// AddResource assigns a user to a project at a role type
func (r *GormProjectRepository) AddResource(res *models.ProjectResource) error {
	return r.db.Create(res).Error
}

// ListResourcesByUser returns a user's active project assignments
func (r *GormProjectRepository) ListResourcesByUser(userID string) ([]models.ProjectResource, error) {
	var resources []models.ProjectResource
	err := r.db.
		Preload("Project").
		Preload("RoleType").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&resources).Error
	return resources, err
}

// HasResource reports whether a user is assigned to a project
func (r *GormProjectRepository) HasResource(projectID uint64, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ProjectResource{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		Count(&count).Error
	return count > 0, err
}

// CreateClient creates a new client
func (r *GormProjectRepository) CreateClient(c *models.Client) error {
	return r.db.Create(c).Error
}

// ListClients returns active clients
func (r *GormProjectRepository) ListClients() ([]models.Client, error) {
	var clients []models.Client
	err := r.db.
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&clients).Error
	return clients, err
}
