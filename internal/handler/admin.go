package handler

import (
	"imagegate/internal/dto"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"
	"imagegate/utils/validate"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	trace        *telemetry.Trace
	adminService *service.AdminService
	imageService *service.ImageService
}

func NewAdminHandler(trace *telemetry.Trace, adminService *service.AdminService, imageService *service.ImageService) *AdminHandler {
	return &AdminHandler{trace: trace, adminService: adminService, imageService: imageService}
}

// Login 管理員登入
// @Summary 管理員登入
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body dto.AdminLoginDto true "管理員密碼"
// @Success 200 {object} dto.AdminLoginResponseDto
// @Failure 401 {object} map[string]string
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.AdminLoginDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.adminService.Login(ctx, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Images 全部圖片
// @Summary 取得全部圖片
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ImageListResponseDto
// @Failure 401 {object} map[string]string
// @Router /admin/images [get]
func (h *AdminHandler) Images(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.imageService.ListAll(ctx)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Stats 平台統計
// @Summary 平台統計
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.AdminStatsResponseDto
// @Failure 401 {object} map[string]string
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.adminService.Stats(ctx)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
