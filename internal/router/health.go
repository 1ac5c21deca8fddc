package router

import (
	"net/http"

	"imagegate/config"
	"imagegate/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthRouter 基礎設施路由：探針、版本與 prometheus 指標，不經過回應信封
type HealthRouter struct {
	config        *config.Configuration
	healthHandler *handler.HealthHandler
}

func NewHealthRouter(
	config *config.Configuration,
	healthHandler *handler.HealthHandler,
) *HealthRouter {
	return &HealthRouter{
		config:        config,
		healthHandler: healthHandler,
	}
}

func (healthRouter *HealthRouter) RegisterHealthRoutes(r *gin.Engine) {
	g := r.Group("/health")
	{
		g.GET("/liveness", healthRouter.healthHandler.Liveness)
		g.GET("/readiness", healthRouter.healthHandler.Readiness)
	}
	r.GET("/version", func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusOK, gin.H{
			"name":    healthRouter.config.App.Name,
			"version": healthRouter.config.App.Version,
			"env":     healthRouter.config.App.Env,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
