package httpserver

import (
	"errors"
	"net/http"

	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/response"

	"github.com/gin-gonic/gin"
)

// Health response constants (single source for version and service identity).
const (
	HealthMessage = "Calendar integration API"
	HealthVersion = "1.0.0"
	ServiceName   = "calendar-integration"

	// readinessProbeUser is looked up to prove the token store answers.
	readinessProbeUser = "__readiness_probe__"
)

// healthCheck handles health check requests
// @Summary Health Check
// @Description Check if the API is healthy
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "API is healthy"
// @Router /health [get]
func (srv HTTPServer) healthCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "healthy",
		"message": HealthMessage,
		"version": HealthVersion,
		"service": ServiceName,
	})
}

// readyCheck reports ready once the token store answers a lookup.
// @Summary Readiness Check
// @Description Check if the API and its token store are ready to serve traffic
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "API is ready"
// @Failure 503 {object} response.Resp "Token store unavailable"
// @Router /ready [get]
func (srv HTTPServer) readyCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := srv.store.Find(ctx, readinessProbeUser); err != nil && !errors.Is(err, repository.ErrNotFound) {
		srv.l.Warnf(ctx, "readyCheck: token store unavailable: %v", err)
		response.Error(c, response.NewHTTPError(http.StatusServiceUnavailable, "token store unavailable"))
		return
	}

	response.OK(c, gin.H{
		"status":  "ready",
		"message": HealthMessage,
		"version": HealthVersion,
		"service": ServiceName,
	})
}

// liveCheck handles liveness check requests
// @Summary Liveness Check
// @Description Check if the API is alive
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "API is alive"
// @Router /live [get]
func (srv HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "alive",
		"message": HealthMessage,
		"version": HealthVersion,
		"service": ServiceName,
	})
}
