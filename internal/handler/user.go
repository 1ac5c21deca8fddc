package handler

import (
	"imagegate/internal/dto"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"
	"imagegate/utils/validate"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	trace       *telemetry.Trace
	userService *service.UserService
}

func NewUserHandler(trace *telemetry.Trace, userService *service.UserService) *UserHandler {
	return &UserHandler{trace: trace, userService: userService}
}

// Identify 取得或建立匿名使用者
// @Summary 取得或建立使用者
// @Tags User
// @Accept json
// @Produce json
// @Param body body dto.IdentifyUserDto false "既有 guid（可省略）"
// @Success 200 {object} dto.UserResponseDto
// @Failure 500 {object} map[string]string
// @Router /user/identify [post]
func (h *UserHandler) Identify(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.IdentifyUserDto
	// body 可為空
	if c.Request.ContentLength > 0 {
		if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
			end(cause)
			response.AbortWithError(c, respErr)
			return
		}
	}

	res, err := h.userService.Identify(ctx, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Verify 確認 guid 是否存在
// @Summary 驗證使用者
// @Tags User
// @Accept json
// @Produce json
// @Param body body dto.VerifyUserDto true "guid"
// @Success 200 {object} dto.UserResponseDto
// @Failure 404 {object} map[string]string
// @Router /user/verify [post]
func (h *UserHandler) Verify(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.VerifyUserDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.userService.Verify(ctx, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
