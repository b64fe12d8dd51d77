package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	quoteapp "github.com/tierquote/backend/internal/application/quote"
	"github.com/tierquote/backend/internal/interfaces/http/dto"
	"github.com/tierquote/backend/internal/interfaces/http/middleware"
)

// QuoteHandler serves the internal quote-builder preview endpoint
type QuoteHandler struct {
	BaseHandler
	quoteService *quoteapp.Service
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *quoteapp.Service) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Preview computes totals, financing, and margin for a draft selection.
func (h *QuoteHandler) Preview(c *gin.Context) {
	var req quoteapp.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			requestID := getRequestID(c)
			c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(verrs, requestID))
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	resp, err := h.quoteService.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
