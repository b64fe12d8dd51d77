package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	identityapp "github.com/tierquote/backend/internal/application/identity"
	"github.com/tierquote/backend/internal/interfaces/http/dto"
	"github.com/tierquote/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles dashboard authentication
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a staff user and issues a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			requestID := getRequestID(c)
			c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(verrs, requestID))
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
