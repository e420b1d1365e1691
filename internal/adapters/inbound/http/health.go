package http

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/archon-research/cryptoplace/internal/ports/inbound"
)

// HealthHandler provides health check endpoints for container orchestration.
//
// Endpoints:
//   - /health/ready  - 200 once the market list has been fetched (readiness probe)
//   - /health/live   - 200 while there is a list to serve (liveness probe)
//   - /health        - Combined health status for monitoring
//
// All endpoints report 503 once shutdown has begun so load balancers drain
// the instance before the server stops.
type HealthHandler struct {
	checker      inbound.HealthChecker
	shuttingDown *atomic.Bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker inbound.HealthChecker, shuttingDown *atomic.Bool) *HealthHandler {
	if shuttingDown == nil {
		shuttingDown = new(atomic.Bool)
	}
	return &HealthHandler{checker: checker, shuttingDown: shuttingDown}
}

// RegisterRoutes registers the health routes on r.
func (hh *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health/ready", hh.handleReady)
	r.GET("/health/live", hh.handleLive)
	r.GET("/health", hh.handleHealth)
}

func (hh *HealthHandler) handleReady(c *gin.Context) {
	if hh.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}
	if hh.checker.IsReady() {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
	}
}

func (hh *HealthHandler) handleLive(c *gin.Context) {
	if hh.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}
	if hh.checker.IsHealthy() {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
	}
}

func (hh *HealthHandler) handleHealth(c *gin.Context) {
	if hh.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "shutting_down",
			"ready":        false,
			"healthy":      false,
			"shuttingDown": true,
		})
		return
	}

	ready := hh.checker.IsReady()
	healthy := hh.checker.IsHealthy()
	status := "ok"
	statusCode := http.StatusOK

	if !ready || !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":       status,
		"ready":        ready,
		"healthy":      healthy,
		"shuttingDown": false,
	})
}
