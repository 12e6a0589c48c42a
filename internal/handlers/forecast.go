package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/consultio/psa-api/internal/dto"
	apierrors "github.com/consultio/psa-api/internal/errors"
	"github.com/consultio/psa-api/internal/middleware"
	"github.com/consultio/psa-api/internal/services"
)

// ForecastHandler coordinates resource forecast HTTP handlers.
type ForecastHandler struct {
	forecastService *services.ForecastService
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(forecastService *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
	}
}

// Grid returns the full forecasting grid grouped by user.
func (h *ForecastHandler) Grid(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	grid, err := h.forecastService.Grid(actor)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": grid})
}

// Upsert creates or overwrites one forecast cell.
func (h *ForecastHandler) Upsert(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.UpsertForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	f, err := h.forecastService.UpsertForecast(actor, req)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

// Capacity returns a user's total forecast hours for one week with a
// display status.
func (h *ForecastHandler) Capacity(c *gin.Context) {
	userID := c.Query("user_id")
	weekStarting := c.Query("week_starting")
	if userID == "" || weekStarting == "" {
		apierrors.BadRequest(c, "user_id and week_starting query parameters are required")
		return
	}

	capacity, err := h.forecastService.WeeklyCapacity(userID, weekStarting)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	c.JSON(http.StatusOK, capacity)
}

func respondForecastError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequestWithDetails(c, "Invalid forecast", validationErr.Violations)
	case errors.Is(err, services.ErrNotPermitted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrForecastHours):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrLockedPeriod):
		apierrors.LockedPeriod(c, err.Error())
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
