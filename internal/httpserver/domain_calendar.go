package httpserver

import (
	"context"

	calendarHTTP "calendar-integration/internal/calendar/delivery/http"
	"calendar-integration/internal/middleware"

	"github.com/gin-gonic/gin"
)

// setupCalendarDomain registers /api/v1/calendar. The adapter is built by the
// caller because it owns the token store and provider configuration.
func (srv HTTPServer) setupCalendarDomain(ctx context.Context, api *gin.RouterGroup, mw middleware.Middleware) error {
	h, err := calendarHTTP.New(srv.l, srv.calendar, calendarHTTP.Config{
		StateSecret: srv.stateSecret,
		StateTTL:    srv.stateTTL,
	})
	if err != nil {
		return err
	}

	calendarHTTP.RegisterRoutes(api.Group("/calendar"), h, mw)

	if srv.stateSecret == "" {
		srv.l.Warnf(ctx, "oauth.state_secret not set; consent flows will not survive a restart")
	}
	srv.l.Infof(ctx, "Calendar domain registered")
	return nil
}
