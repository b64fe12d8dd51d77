package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	estimateapp "github.com/tierquote/backend/internal/application/estimate"
	proposalapp "github.com/tierquote/backend/internal/application/proposal"
)

// EstimateHandler serves the internal dashboard surface for estimates
type EstimateHandler struct {
	BaseHandler
	estimateService   *estimateapp.Service
	engagementService *proposalapp.EngagementService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(
	estimateService *estimateapp.Service,
	engagementService *proposalapp.EngagementService,
) *EstimateHandler {
	return &EstimateHandler{
		estimateService:   estimateService,
		engagementService: engagementService,
	}
}

// ListEstimatesRequest represents the dashboard list query
type ListEstimatesRequest struct {
	Page           int    `form:"page" binding:"min=0"`
	PageSize       int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search         string `form:"search"`
	Status         string `form:"status" binding:"omitempty,oneof=DRAFT SENT VIEWED WON LOST DORMANT"`
	AssignedUserID string `form:"assigned_user_id" binding:"omitempty,uuid"`
}

// SnoozeRequest represents a request to park an estimate
type SnoozeRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

// SetStatusRequest represents a manual status override
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT SENT VIEWED WON LOST DORMANT"`
}

// List returns a page of estimates
func (h *EstimateHandler) List(c *gin.Context) {
	var req ListEstimatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := estimateapp.ListQuery{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Status:   req.Status,
	}
	if req.AssignedUserID != "" {
		id, err := uuid.Parse(req.AssignedUserID)
		if err != nil {
			h.BadRequest(c, "Invalid assigned user ID")
			return
		}
		query.AssignedUserID = &id
	}

	result, err := h.estimateService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID returns one estimate with items
func (h *EstimateHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID")
		return
	}

	detail, err := h.estimateService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// GetEngagement returns the engagement timeline for an estimate
func (h *EstimateHandler) GetEngagement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID")
		return
	}

	events, err := h.engagementService.Timeline(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// Snooze parks an estimate until a given time
func (h *EstimateHandler) Snooze(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID")
		return
	}

	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.estimateService.Snooze(c.Request.Context(), id, req.Until); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"snoozed_until": req.Until})
}

// SetStatus applies a manual status override
func (h *EstimateHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.estimateService.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"status": req.Status})
}
