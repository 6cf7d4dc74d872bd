package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/service"
	"github.com/districtops/transport-api/pkg/response"
)

// AvailabilityHandler answers who-is-free questions for a date and time
// window.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// AvailableDrivers godoc
// @Summary List drivers free for a time window
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Window start (HH:MM)"
// @Param end query string true "Window end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /availability/drivers [get]
func (h *AvailabilityHandler) AvailableDrivers(c *gin.Context) {
	date, start, end, err := windowParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	drivers, err := h.service.GetAvailableDrivers(c.Request.Context(), date, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drivers, nil)
}

// AvailableVehicles godoc
// @Summary List vehicles free for a time window
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Window start (HH:MM)"
// @Param end query string true "Window end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /availability/vehicles [get]
func (h *AvailabilityHandler) AvailableVehicles(c *gin.Context) {
	date, start, end, err := windowParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	vehicles, err := h.service.GetAvailableVehicles(c.Request.Context(), date, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicles, nil)
}

// DriverAvailable godoc
// @Summary Check whether a specific driver is free
// @Tags Availability
// @Produce json
// @Param id path int true "Driver ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Window start (HH:MM)"
// @Param end query string true "Window end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /availability/drivers/{id} [get]
func (h *AvailabilityHandler) DriverAvailable(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, start, end, err := windowParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	available, err := h.service.IsDriverAvailable(c.Request.Context(), id, date, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"available": available}, nil)
}

// VehicleAvailable godoc
// @Summary Check whether a specific vehicle is free
// @Tags Availability
// @Produce json
// @Param id path int true "Vehicle ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Window start (HH:MM)"
// @Param end query string true "Window end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /availability/vehicles/{id} [get]
func (h *AvailabilityHandler) VehicleAvailable(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, start, end, err := windowParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	available, err := h.service.IsVehicleAvailable(c.Request.Context(), id, date, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"available": available}, nil)
}
