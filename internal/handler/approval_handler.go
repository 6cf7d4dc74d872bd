package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/service"
	appErrors "github.com/districtops/transport-api/pkg/errors"
	"github.com/districtops/transport-api/pkg/response"
)

type approveRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required"`
}

type rejectRequest struct {
	RejectedBy string `json:"rejected_by" binding:"required"`
	Reason     string `json:"reason"`
}

// ApprovalHandler manages the activity approval workflow.
type ApprovalHandler struct {
	service *service.ApprovalService
}

// NewApprovalHandler constructs handler.
func NewApprovalHandler(svc *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{service: svc}
}

// Submit godoc
// @Summary Submit an activity for approval
// @Tags Approvals
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/submit [post]
func (h *ApprovalHandler) Submit(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok, err := h.service.SubmitForApproval(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "activity not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submitted": true}, nil)
}

// Approve godoc
// @Summary Approve a pending activity
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body approveRequest true "Approver"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ok, err := h.service.Approve(c.Request.Context(), id, req.ApprovedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "activity not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"approved": true}, nil)
}

// Reject godoc
// @Summary Reject a pending activity
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body rejectRequest true "Rejection details"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ok, err := h.service.Reject(c.Request.Context(), id, req.RejectedBy, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "activity not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"rejected": true}, nil)
}
