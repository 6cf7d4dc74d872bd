package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/models"
	"github.com/districtops/transport-api/internal/service"
	appErrors "github.com/districtops/transport-api/pkg/errors"
	"github.com/districtops/transport-api/pkg/response"
)

// VehicleHandler manages the vehicle fleet endpoints.
type VehicleHandler struct {
	service *service.VehicleService
}

// NewVehicleHandler constructs handler.
func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: svc}
}

// List godoc
// @Summary List vehicles
// @Tags Vehicles
// @Produce json
// @Param search query string false "Search by number or plate"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	var filter models.VehicleFilter
	filter.Search = c.Query("search")
	filter.Status = models.ResourceStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	vehicles, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicles, pagination)
}

// Get godoc
// @Summary Get vehicle
// @Tags Vehicles
// @Produce json
// @Param id path int true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	vehicle, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicle, nil)
}

// Create godoc
// @Summary Register vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param payload body service.CreateVehicleRequest true "Vehicle payload"
// @Success 201 {object} response.Envelope
// @Router /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	vehicle, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, vehicle)
}

// Update godoc
// @Summary Update vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param id path int true "Vehicle ID"
// @Param payload body service.UpdateVehicleRequest true "Vehicle payload"
// @Success 200 {object} response.Envelope
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	vehicle, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicle, nil)
}

// Deactivate godoc
// @Summary Deactivate vehicle
// @Tags Vehicles
// @Param id path int true "Vehicle ID"
// @Success 204
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Deactivate(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
