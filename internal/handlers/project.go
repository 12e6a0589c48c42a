package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/consultio/psa-api/internal/errors"
	"github.com/consultio/psa-api/internal/middleware"
	"github.com/consultio/psa-api/internal/services"
)

// ProjectHandler coordinates project and client HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// List returns active projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List()
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Create creates a new project.
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name             string  `json:"name" binding:"required,max=255"`
		Description      string  `json:"description"`
		ClientID         *uint64 `json:"client_id"`
		ProjectManagerID *string `json:"project_manager_id"`
		Budget           float64 `json:"budget" binding:"omitempty,min=0"`
		Currency         string  `json:"currency" binding:"omitempty,len=3"`
		HourlyRate       float64 `json:"hourly_rate" binding:"omitempty,min=0"`
		StartDate        string  `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
		EndDate          string  `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	project, err := h.projectService.Create(actor, services.CreateProjectInput{
		Name:             req.Name,
		Description:      req.Description,
		ClientID:         req.ClientID,
		ProjectManagerID: req.ProjectManagerID,
		Budget:           req.Budget,
		Currency:         req.Currency,
		HourlyRate:       req.HourlyRate,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Get returns one project with its role cards.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.Get(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	cards, err := h.projectService.RoleCards(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":    project,
		"role_cards": cards,
	})
}

// MyAssignments returns the authenticated user's active project assignments.
func (h *ProjectHandler) MyAssignments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	assignments, err := h.projectService.MyAssignments(actor)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// AddRoleType adds a rate card entry to a project.
func (h *ProjectHandler) AddRoleType(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type AddRoleTypeRequest struct {
		Name        string  `json:"name" binding:"required,max=100"`
		HourlyRate  float64 `json:"hourly_rate" binding:"min=0"`
		Description string  `json:"description"`
	}

	var req AddRoleTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	rt, err := h.projectService.AddRoleType(actor, id, req.Name, req.HourlyRate, req.Description)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rt)
}

// AssignResource assigns a user to a project at a role type.
func (h *ProjectHandler) AssignResource(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type AssignResourceRequest struct {
		UserID         string  `json:"user_id" binding:"required"`
		RoleTypeID     uint64  `json:"role_type_id" binding:"required"`
		AllocatedHours float64 `json:"allocated_hours" binding:"omitempty,min=0"`
	}

	var req AssignResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	res, err := h.projectService.AssignResource(actor, id, req.UserID, req.RoleTypeID, req.AllocatedHours)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// ListClients returns active clients.
func (h *ProjectHandler) ListClients(c *gin.Context) {
	clients, err := h.projectService.ListClients()
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// CreateClient creates a new client.
func (h *ProjectHandler) CreateClient(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateClientRequest struct {
		Name          string `json:"name" binding:"required,max=255"`
		Email         string `json:"email" binding:"omitempty,email"`
		ContactPerson string `json:"contact_person" binding:"omitempty,max=255"`
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	client, err := h.projectService.CreateClient(actor, req.Name, req.Email, req.ContactPerson)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotPermitted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameEmpty),
		errors.Is(err, services.ErrClientNameEmpty),
		errors.Is(err, services.ErrRoleTypeNotFound):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
