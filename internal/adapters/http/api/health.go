package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and monitoring endpoints.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth serves GET /healthz.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleStats serves GET /stats with service counters for monitoring.
func (h *HealthHandler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.GetStats(c.Request.Context()))
}
