package router

import (
	"imagegate/internal/handler"
	"imagegate/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AdminRouter struct {
	adminHandler          *handler.AdminHandler
	moderationHandler     *handler.AdminModerationHandler
	telemetryHandler      *handler.AdminTelemetryHandler
	adminCredentialRouter *AdminCredentialRouter
	adminAuthMiddleware   *middleware.AdminAuth
}

func NewAdminRouter(
	adminHandler *handler.AdminHandler,
	moderationHandler *handler.AdminModerationHandler,
	telemetryHandler *handler.AdminTelemetryHandler,
	adminCredentialRouter *AdminCredentialRouter,
	adminAuthMiddleware *middleware.AdminAuth,
) *AdminRouter {
	return &AdminRouter{
		adminHandler:          adminHandler,
		moderationHandler:     moderationHandler,
		telemetryHandler:      telemetryHandler,
		adminCredentialRouter: adminCredentialRouter,
		adminAuthMiddleware:   adminAuthMiddleware,
	}
}

func (ar *AdminRouter) RegisterRoutes(api *gin.RouterGroup) {
	// login 本身不需要 token
	api.POST("/admin/login", ar.adminHandler.Login)

	admin := api.Group("/admin")
	admin.Use(ar.adminAuthMiddleware.Handler())
	{
		admin.GET("/images", ar.adminHandler.Images)
		admin.GET("/stats", ar.adminHandler.Stats)

		moderation := admin.Group("/moderation")
		{
			moderation.GET("/guidelines", ar.moderationHandler.GetGuidelines)
			moderation.PUT("/guidelines", ar.moderationHandler.SetGuidelines)
			moderation.DELETE("/guidelines", ar.moderationHandler.ResetGuidelines)
			moderation.GET("/failures", ar.moderationHandler.Failures)
		}

		telemetry := admin.Group("/telemetry")
		{
			telemetry.GET("/tokens", ar.telemetryHandler.Tokens)
			telemetry.GET("/summary", ar.telemetryHandler.Summary)
		}

		// credential 子路由獨立管理
		ar.adminCredentialRouter.Register(admin)
	}
}
