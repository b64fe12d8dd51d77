package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tierquote/backend/internal/interfaces/http/handler"
)

// ProposalRoutes builds the public, token-addressed proposal surface.
// The accept route takes extra middleware so callers can attach a
// token-scoped rate limit to the one endpoint that commits state.
func ProposalRoutes(h *handler.ProposalHandler, acceptMiddleware ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("proposals", "/proposals")
	g.GET("/:token", h.Get)
	g.POST("/:token/events", h.RecordEvent)
	g.POST("/:token/session", h.RecordSession)

	acceptChain := append(append([]gin.HandlerFunc{}, acceptMiddleware...), h.Accept)
	g.POST("/:token/accept", acceptChain...)
	return g
}

// QuoteRoutes builds the internal quote-authoring surface.
func QuoteRoutes(h *handler.QuoteHandler) *DomainGroup {
	g := NewDomainGroup("quotes", "/quotes")
	g.POST("/preview", h.Preview)
	return g
}

// EstimateRoutes builds the staff dashboard surface.
func EstimateRoutes(h *handler.EstimateHandler) *DomainGroup {
	g := NewDomainGroup("estimates", "/estimates")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.GET("/:id/engagement", h.GetEngagement)
	g.POST("/:id/snooze", h.Snooze)
	g.POST("/:id/status", h.SetStatus)
	return g
}

// AuthRoutes builds the staff authentication surface.
func AuthRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/login", h.Login)
	return g
}

// SystemRoutes builds the operational metadata surface.
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
	return g
}
