package handler

import (
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"
	"imagegate/utils/validate"

	"github.com/gin-gonic/gin"
)

type AdminModerationHandler struct {
	trace             *telemetry.Trace
	moderationService *service.ModerationService
}

func NewAdminModerationHandler(trace *telemetry.Trace, moderationService *service.ModerationService) *AdminModerationHandler {
	return &AdminModerationHandler{trace: trace, moderationService: moderationService}
}

// GetGuidelines 目前審查規則
// @Summary 取得審查規則
// @Tags Admin-Moderation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.GuidelinesResponseDto
// @Router /admin/moderation/guidelines [get]
func (h *AdminModerationHandler) GetGuidelines(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.moderationService.GetGuidelines(ctx)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// SetGuidelines 更新審查規則
// @Summary 更新審查規則（立即生效）
// @Tags Admin-Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GuidelinesDto true "規則內容"
// @Success 200 {object} dto.GuidelinesResponseDto
// @Failure 400 {object} map[string]string
// @Router /admin/moderation/guidelines [put]
func (h *AdminModerationHandler) SetGuidelines(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.GuidelinesDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.moderationService.SetGuidelines(ctx, req.Guidelines)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// ResetGuidelines 回到預設規則
// @Summary 重設審查規則
// @Tags Admin-Moderation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.GuidelinesResponseDto
// @Router /admin/moderation/guidelines [delete]
func (h *AdminModerationHandler) ResetGuidelines(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.moderationService.ResetGuidelines(ctx)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Failures 審查拒絕紀錄
// @Summary 審查拒絕紀錄（新到舊）
// @Tags Admin-Moderation
// @Security BearerAuth
// @Produce json
// @Param limit query int false "筆數上限" default(100)
// @Success 200 {array} model.ModerationFailure
// @Failure 400 {object} map[string]string
// @Router /admin/moderation/failures [get]
func (h *AdminModerationHandler) Failures(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	limit, err := validate.GetInt64Query(c, "limit", 100)
	if err != nil || limit < 0 {
		response.AbortWithError(c, cErr.BadRequestParams("limit must be a non-negative integer"))
		return
	}

	res, err := h.moderationService.ListFailures(ctx, limit)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
