package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewCors,
	NewLogger,
	NewRecovery,
	NewTraceEntry,
	NewAdminAuth,
	NewResponse,
)

const (
	contextRequestIDKey = "requestID"
	contextDurationKey  = "requestDuration"
)

// requestID 由 TraceEntry 產生，Response 與 Recovery 共用同一個值
func requestID(c *gin.Context) string {
	if v, ok := c.Get(contextRequestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	c.Set(contextRequestIDKey, id.String())
	return id.String()
}

// 不需要 tracing 與統一回應包裝的路徑
func isInfraPath(endpoint string) bool {
	for _, prefix := range []string{"/swagger", "/metrics", "/version", "/health", "/debug/pprof"} {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}
