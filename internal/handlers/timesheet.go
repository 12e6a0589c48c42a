package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/consultio/psa-api/internal/dto"
	apierrors "github.com/consultio/psa-api/internal/errors"
	"github.com/consultio/psa-api/internal/middleware"
	"github.com/consultio/psa-api/internal/services"
	"github.com/consultio/psa-api/internal/utils"
)

// TimesheetHandler coordinates timesheet lifecycle HTTP handlers.
type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
	}
}

// List returns timesheets visible to the current user.
func (h *TimesheetHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.timesheetService.List(actor, params)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timesheets": dto.ToTimesheetDTOs(entries),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// Week returns the weekly view for the current user.
func (h *TimesheetHandler) Week(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	weekCommencing := c.Query("week_commencing")
	if weekCommencing == "" {
		apierrors.BadRequest(c, "week_commencing query parameter is required")
		return
	}

	week, err := h.timesheetService.WeekView(actor, weekCommencing)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, week)
}

// Save persists draft hours for a week without changing workflow state.
func (h *TimesheetHandler) Save(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.WeekSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	entries, err := h.timesheetService.Save(actor, req)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timesheets": dto.ToTimesheetDTOs(entries)})
}

// Submit validates a week and moves its hours into the approval queue.
func (h *TimesheetHandler) Submit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.WeekSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	entries, err := h.timesheetService.Submit(actor, req)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timesheets": dto.ToTimesheetDTOs(entries)})
}

// Approve approves a single submitted timesheet.
func (h *TimesheetHandler) Approve(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ts, err := h.timesheetService.Approve(actor, id)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*ts))
}

// Reject sends a submitted timesheet back to draft with a reason.
func (h *TimesheetHandler) Reject(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	type RejectRequest struct {
		Reason string `json:"reason" binding:"required"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Rejection reason is required")
		return
	}

	ts, err := h.timesheetService.Reject(actor, id, req.Reason)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*ts))
}

// Revert withdraws a submitted timesheet back to draft.
func (h *TimesheetHandler) Revert(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ts, err := h.timesheetService.RevertToDraft(actor, id)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*ts))
}

// Delete removes a non-approved timesheet.
func (h *TimesheetHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.timesheetService.Delete(actor, id); err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Timesheet deleted"})
}

// BulkApprove approves each listed timesheet independently.
func (h *TimesheetHandler) BulkApprove(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkApproveRequest struct {
		IDs []uint64 `json:"ids" binding:"required,min=1"`
	}

	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	result := h.timesheetService.BulkApprove(actor, req.IDs)
	c.JSON(http.StatusOK, result)
}

// BulkReject rejects each listed timesheet independently with one reason.
func (h *TimesheetHandler) BulkReject(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkRejectRequest struct {
		IDs    []uint64 `json:"ids" binding:"required,min=1"`
		Reason string   `json:"reason" binding:"required"`
	}

	var req BulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.FormatBindingError(err))
		return
	}

	result, err := h.timesheetService.BulkReject(actor, req.IDs, req.Reason)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Pending returns the approval queue scoped to the current approver.
func (h *TimesheetHandler) Pending(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	entries, err := h.timesheetService.Pending(actor)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timesheets": dto.ToTimesheetDTOs(entries)})
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid timesheet ID")
		return 0, false
	}
	return id, true
}

func respondTimesheetError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequestWithDetails(c, "Week submission failed validation", validationErr.Violations)
	case errors.Is(err, services.ErrTimesheetNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotPermitted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		apierrors.InvalidState(c, err.Error())
	case errors.Is(err, services.ErrNothingToSubmit):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrReasonRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
