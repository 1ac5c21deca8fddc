package router

import (
	"imagegate/internal/handler"

	"github.com/gin-gonic/gin"
)

// APIRouter 對一般使用者開放的 /api 路由
type APIRouter struct {
	userHandler   *handler.UserHandler
	imageHandler  *handler.ImageHandler
	aiHandler     *handler.AIHandler
	accessHandler *handler.AccessHandler
}

func NewAPIRouter(
	userHandler *handler.UserHandler,
	imageHandler *handler.ImageHandler,
	aiHandler *handler.AIHandler,
	accessHandler *handler.AccessHandler,
) *APIRouter {
	return &APIRouter{
		userHandler:   userHandler,
		imageHandler:  imageHandler,
		aiHandler:     aiHandler,
		accessHandler: accessHandler,
	}
}

func (apiRouter *APIRouter) RegisterRoutes(api *gin.RouterGroup) {
	user := api.Group("/user")
	{
		user.POST("/identify", apiRouter.userHandler.Identify)
		user.POST("/verify", apiRouter.userHandler.Verify)
	}

	images := api.Group("/images")
	{
		images.POST("/generate", apiRouter.imageHandler.Generate)
		images.POST("/edit", apiRouter.imageHandler.Edit)
		images.GET("/gallery", apiRouter.imageHandler.Gallery)
		images.GET("/:imageID", apiRouter.imageHandler.Get)
		images.GET("/:imageID/file", apiRouter.imageHandler.File)
		images.DELETE("/:imageID", apiRouter.imageHandler.Delete)
	}

	ai := api.Group("/ai")
	{
		ai.POST("/suggest-prompts", apiRouter.aiHandler.SuggestPrompts)
		ai.POST("/describe-image/:imageID", apiRouter.aiHandler.DescribeImage)
		ai.POST("/suggest-edits/:imageID", apiRouter.aiHandler.SuggestEdits)
	}

	api.POST("/access/check", apiRouter.accessHandler.Check)
}
