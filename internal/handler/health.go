package handler

import (
	"net/http"

	"imagegate/internal/service"

	"github.com/gin-gonic/gin"
)

// 探針直接回 JSON，不經過 Response middleware 的信封
type HealthHandler struct {
	healthService *service.HealthService
}

func NewHealthHandler(healthService *service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	if !h.healthService.IsLive() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
		return
	}
	c.AbortWithStatusJSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	ready, checks := h.healthService.Readiness(c.Request.Context())
	if !ready {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.AbortWithStatusJSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
