package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/models"
	"github.com/districtops/transport-api/internal/service"
	appErrors "github.com/districtops/transport-api/pkg/errors"
	"github.com/districtops/transport-api/pkg/response"
)

// RecurrenceHandler manages recurring series endpoints.
type RecurrenceHandler struct {
	service *service.RecurrenceService
}

// NewRecurrenceHandler constructs handler.
func NewRecurrenceHandler(svc *service.RecurrenceService) *RecurrenceHandler {
	return &RecurrenceHandler{service: svc}
}

// Create godoc
// @Summary Create a recurring activity series
// @Tags Recurrence
// @Accept json
// @Produce json
// @Param payload body service.CreateRecurringRequest true "Recurring activity payload"
// @Success 201 {object} response.Envelope
// @Router /activities/recurring [post]
func (h *RecurrenceHandler) Create(c *gin.Context) {
	var req service.CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.CreateRecurringActivities(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetSeries godoc
// @Summary List all members of a recurring series
// @Tags Recurrence
// @Produce json
// @Param id path int true "Activity ID of any member"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/series [get]
func (h *RecurrenceHandler) GetSeries(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	members, err := h.service.GetRecurringSeries(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// UpdateSeries godoc
// @Summary Update a recurring series member or its future members
// @Tags Recurrence
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body service.UpdateSeriesRequest true "Scoped update payload"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/series [put]
func (h *RecurrenceHandler) UpdateSeries(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.service.UpdateRecurringSeries(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !updated {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "activity not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": true}, nil)
}

// DeleteSeries godoc
// @Summary Delete a recurring series member or its future members
// @Tags Recurrence
// @Param id path int true "Activity ID"
// @Param scope query string true "THIS_ONLY or THIS_AND_FUTURE"
// @Success 204
// @Router /activities/{id}/series [delete]
func (h *RecurrenceHandler) DeleteSeries(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	scope := models.EditScope(c.DefaultQuery("scope", string(models.ScopeThisOnly)))
	deleted, err := h.service.DeleteRecurringSeries(c.Request.Context(), id, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "activity not found"))
		return
	}
	response.NoContent(c)
}
