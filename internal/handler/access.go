package handler

import (
	"imagegate/internal/dto"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"
	"imagegate/utils/validate"

	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	trace             *telemetry.Trace
	credentialService *service.CredentialService
}

func NewAccessHandler(trace *telemetry.Trace, credentialService *service.CredentialService) *AccessHandler {
	return &AccessHandler{trace: trace, credentialService: credentialService}
}

// Check 通行碼預檢
// @Summary 檢查通行碼
// @Description 不消耗配額；有效的一般通行碼會附上配額資訊
// @Tags Access
// @Accept json
// @Produce json
// @Param body body dto.AccessCheckDto true "通行碼"
// @Success 200 {object} dto.AccessCheckResponseDto
// @Failure 400 {object} map[string]string
// @Router /access/check [post]
func (h *AccessHandler) Check(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.AccessCheckDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.credentialService.Check(ctx, req.Code)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
