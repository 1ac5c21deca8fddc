package router

import (
	"imagegate/internal/handler"

	"github.com/gin-gonic/gin"
)

type AdminCredentialRouter struct {
	handler *handler.AdminCredentialHandler
}

func NewAdminCredentialRouter(
	handler *handler.AdminCredentialHandler,
) *AdminCredentialRouter {
	return &AdminCredentialRouter{handler: handler}
}

// 可以把 route group 掛在任何 group 下
func (ar *AdminCredentialRouter) Register(group *gin.RouterGroup) {
	credentials := group.Group("/credentials")
	{
		credentials.GET("", ar.handler.List)
		credentials.POST("", ar.handler.Upsert)
		credentials.GET("/:code", ar.handler.Get)
		credentials.PATCH("/:code", ar.handler.Patch)
		credentials.DELETE("/:code", ar.handler.Delete)
		credentials.GET("/:code/usages", ar.handler.Usages)
	}
}
