package middleware

import (
	"strings"

	"imagegate/internal/core"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuth 管理端 API 以共用密鑰保護
type AdminAuth struct {
	logger       *zap.Logger
	trace        *telemetry.Trace
	adminService *service.AdminService
}

func NewAdminAuth(
	logger *zap.Logger,
	trace *telemetry.Trace,
	adminService *service.AdminService,
) *AdminAuth {
	return &AdminAuth{
		logger:       logger,
		trace:        trace,
		adminService: adminService,
	}
}

func (middleware *AdminAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanAdminMiddleware))
		token, from := middleware.readAdminToken(c)
		meta := core.TraceAdminAuthMeta{
			Where:    from,
			ClientIP: c.ClientIP(),
		}

		if token == "" {
			meta.Status = "missing_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			cause := cErr.Unauthorized("Missing admin token")
			response.AbortWithError(c, cause)
			end(cause)
			return
		}

		if !middleware.adminService.Authenticate(token) {
			meta.Status = "invalid_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			cause := cErr.Unauthorized("Invalid admin token")
			middleware.logger.Warn("[Admin] rejected token",
				append(telemetry.SpanFields(span), zap.String("clientIp", c.ClientIP()), zap.String("from", from))...)
			response.AbortWithError(c, cause)
			end(cause)
			return
		}

		meta.Status = "success"
		middleware.trace.ApplyTraceAttributes(span, meta)
		end(nil)

		c.Set("isAdmin", true)
		c.Next()
	}
}

func (middleware *AdminAuth) readAdminToken(c *gin.Context) (token string, from string) {
	// 1) Authorization: Bearer <admin_secret>
	if auth := strings.TrimSpace(c.GetHeader("Authorization")); auth != "" {
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return strings.TrimSpace(auth[len("Bearer "):]), "bearer"
		}
	}

	// 2) X-Admin-Token
	if x := strings.TrimSpace(c.GetHeader("X-Admin-Token")); x != "" {
		return x, "x-admin-token"
	}
	return "", ""
}
