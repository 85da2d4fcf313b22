package http

import (
	"calendar-integration/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes maps HTTP verbs and paths to Handler methods.
// Every route is rate limited per client.
func RegisterRoutes(rg *gin.RouterGroup, h *handler, mw middleware.Middleware) {
	rg.Use(mw.RateLimit())

	rg.GET("/connect", h.Connect)
	rg.GET("/oauth/callback", h.OAuthCallback)
	rg.POST("/authorize", h.Authorize)
	rg.POST("/tokens/refresh", h.RefreshToken)

	events := rg.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.POST("", h.CreateEvent)
	}
}
