package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/consultio/psa-api/internal/errors"
	"github.com/consultio/psa-api/internal/middleware"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/services"
	"github.com/consultio/psa-api/internal/utils"
)

// AnalyticsHandler exposes read-only hour rollups.
type AnalyticsHandler struct {
	metricsService *services.MetricsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(metricsService *services.MetricsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		metricsService: metricsService,
	}
}

// UserMetrics returns the per-user rollup. Users may see their own metrics;
// approvers may see anyone's.
func (h *AnalyticsHandler) UserMetrics(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID := c.Param("id")
	if userID != actor.ID && !actor.Role.CanApproveTimesheets() {
		apierrors.Forbidden(c, "cannot view another user's metrics")
		return
	}

	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		// Default to the current week.
		monday := utils.CurrentWeekStart()
		start = monday.Format(utils.DateLayout)
		end = utils.WeekEnd(monday).Format(utils.DateLayout)
	}
	if _, err := utils.ParseDate(start); err != nil {
		apierrors.BadRequest(c, "start must be a YYYY-MM-DD date")
		return
	}
	if _, err := utils.ParseDate(end); err != nil {
		apierrors.BadRequest(c, "end must be a YYYY-MM-DD date")
		return
	}

	metrics, err := h.metricsService.UserMetrics(userID, start, end)
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// ProjectMetrics returns per-project hour sums for active projects.
func (h *AnalyticsHandler) ProjectMetrics(c *gin.Context) {
	rows, err := h.metricsService.ProjectMetrics()
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": rows})
}

// ManagerMetrics returns the rollup across the current manager's projects.
func (h *AnalyticsHandler) ManagerMetrics(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	if !actor.Role.CanApproveTimesheets() {
		apierrors.Forbidden(c, "approver role required")
		return
	}

	managerID := actor.ID
	if actor.Role == models.RoleAdmin {
		if id := c.Query("manager_id"); id != "" {
			managerID = id
		}
	}

	metrics, err := h.metricsService.ManagerMetrics(managerID)
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// PendingBySubmitter groups the approval queue by submitting user.
func (h *AnalyticsHandler) PendingBySubmitter(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	groups, err := h.metricsService.PendingBySubmitter(actor)
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func respondAnalyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotPermitted):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
