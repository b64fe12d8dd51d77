package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	"github.com/tierquote/backend/internal/interfaces/http/dto"
	"github.com/tierquote/backend/internal/interfaces/http/middleware"
)

// ProposalHandler serves the public, token-addressed proposal surface. Every
// route on it authenticates by the opaque token alone; there is no account
// context on this side of the API.
type ProposalHandler struct {
	BaseHandler
	viewService       *proposalapp.ViewService
	acceptanceService *proposalapp.AcceptanceService
	engagementService *proposalapp.EngagementService
	fanoutRunner      *proposalapp.FanoutRunner
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(
	viewService *proposalapp.ViewService,
	acceptanceService *proposalapp.AcceptanceService,
	engagementService *proposalapp.EngagementService,
	fanoutRunner *proposalapp.FanoutRunner,
) *ProposalHandler {
	return &ProposalHandler{
		viewService:       viewService,
		acceptanceService: acceptanceService,
		engagementService: engagementService,
		fanoutRunner:      fanoutRunner,
	}
}

// Get returns the customer-facing proposal payload for a token.
func (h *ProposalHandler) Get(c *gin.Context) {
	view, err := h.viewService.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Accept processes an acceptance submission. On success the response is
// written and flushed before the post-sign fan-out starts, so external
// integrations can never delay or fail the customer's confirmation.
func (h *ProposalHandler) Accept(c *gin.Context) {
	var req proposalapp.AcceptProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			requestID := getRequestID(c)
			c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(verrs, requestID))
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	sessionID := c.GetHeader("X-Session-ID")

	resp, psc, err := h.acceptanceService.Accept(
		c.Request.Context(),
		c.Param("token"),
		req,
		c.ClientIP(),
		sessionID,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
	c.Writer.Flush()

	if h.fanoutRunner != nil && psc != nil {
		// Detached from the request context so client disconnects cannot
		// cancel side effects that must still happen.
		go h.fanoutRunner.Run(context.WithoutCancel(c.Request.Context()), psc)
	}
}

// RecordEvent appends one page interaction event.
func (h *ProposalHandler) RecordEvent(c *gin.Context) {
	var req proposalapp.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	err := h.engagementService.Record(c.Request.Context(), c.Param("token"), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c)
}

// RecordSession ingests the dwell-time beacon the page sends on hide/unload.
func (h *ProposalHandler) RecordSession(c *gin.Context) {
	var req proposalapp.SessionBeaconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	err := h.engagementService.RecordSession(c.Request.Context(), c.Param("token"), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
