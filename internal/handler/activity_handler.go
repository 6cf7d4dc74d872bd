package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/models"
	"github.com/districtops/transport-api/internal/service"
	appErrors "github.com/districtops/transport-api/pkg/errors"
	"github.com/districtops/transport-api/pkg/response"
)

// ActivityHandler manages activity scheduling endpoints.
type ActivityHandler struct {
	service *service.ActivityService
	exports *service.ExportService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(svc *service.ActivityService, exports *service.ExportService) *ActivityHandler {
	return &ActivityHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List activities
// @Tags Activities
// @Produce json
// @Param dateFrom query string false "Filter from date (YYYY-MM-DD)"
// @Param dateTo query string false "Filter to date (YYYY-MM-DD)"
// @Param driverId query int false "Filter by driver"
// @Param vehicleId query int false "Filter by vehicle"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by activity type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var filter models.ActivityFilter
	if raw := c.Query("dateFrom"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &date
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateTo = &date
		}
	}
	if id, err := strconv.ParseInt(c.Query("driverId"), 10, 64); err == nil {
		filter.DriverID = id
	}
	if id, err := strconv.ParseInt(c.Query("vehicleId"), 10, 64); err == nil {
		filter.VehicleID = id
	}
	filter.Status = models.ActivityStatus(c.Query("status"))
	filter.Type = c.Query("type")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	activities, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, pagination)
}

// Get godoc
// @Summary Get activity
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	activity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Create godoc
// @Summary Schedule activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body service.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Update godoc
// @Summary Update activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body service.UpdateActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Delete godoc
// @Summary Delete activity
// @Tags Activities
// @Param id path int true "Activity ID"
// @Success 204
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Validate godoc
// @Summary Validate an activity without persisting it
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body models.Activity true "Activity payload"
// @Success 200 {object} response.Envelope
// @Router /activities/validate [post]
func (h *ActivityHandler) Validate(c *gin.Context) {
	var activity models.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	problems := h.service.Validate(c.Request.Context(), &activity)
	response.JSON(c, http.StatusOK, gin.H{"valid": len(problems) == 0, "problems": problems}, nil)
}

// Conflicts godoc
// @Summary Detect schedule conflicts for a candidate activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body models.Activity true "Candidate activity"
// @Success 200 {object} response.Envelope
// @Router /activities/conflicts [post]
func (h *ActivityHandler) Conflicts(c *gin.Context) {
	var activity models.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	conflicts, err := h.service.DetectConflicts(c.Request.Context(), &activity, activity.ID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detect conflicts"))
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// Export godoc
// @Summary Export the schedule for a date range
// @Tags Activities
// @Produce text/csv
// @Produce application/pdf
// @Param dateFrom query string true "From date (YYYY-MM-DD)"
// @Param dateTo query string true "To date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /activities/export [get]
func (h *ActivityHandler) Export(c *gin.Context) {
	from, err := queryDate(c, "dateFrom")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "dateTo")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.exports.ExportSchedule(c.Request.Context(), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "schedule-" + from.Format("2006-01-02") + "-" + to.Format("2006-01-02") + "." + format
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
