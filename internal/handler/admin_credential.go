package handler

import (
	"net/http"

	"imagegate/internal/dto"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"
	"imagegate/utils/validate"

	"github.com/gin-gonic/gin"
)

type AdminCredentialHandler struct {
	trace             *telemetry.Trace
	credentialService *service.CredentialService
	usageService      *service.UsageService
}

func NewAdminCredentialHandler(
	trace *telemetry.Trace,
	credentialService *service.CredentialService,
	usageService *service.UsageService,
) *AdminCredentialHandler {
	return &AdminCredentialHandler{trace: trace, credentialService: credentialService, usageService: usageService}
}

// List 通行碼列表
// @Summary 取得通行碼列表
// @Tags Admin-Credential
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.CredentialResponseDto
// @Failure 401 {object} map[string]string
// @Router /admin/credentials [get]
func (h *AdminCredentialHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.credentialService.List(ctx)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Upsert 建立或覆寫通行碼
// @Summary 建立或覆寫通行碼
// @Description code 不分大小寫；createdAt 與 expiresAt 由現在重新計算
// @Tags Admin-Credential
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.UpsertCredentialDto true "通行碼設定"
// @Success 201 {object} dto.CredentialResponseDto
// @Failure 400 {object} map[string]string
// @Router /admin/credentials [post]
func (h *AdminCredentialHandler) Upsert(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.UpsertCredentialDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.credentialService.Upsert(ctx, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
	response.Create(c, res)
}

// Get 取得單一通行碼
// @Summary 取得單一通行碼
// @Tags Admin-Credential
// @Security BearerAuth
// @Produce json
// @Param code path string true "通行碼"
// @Success 200 {object} dto.CredentialResponseDto
// @Failure 404 {object} map[string]string
// @Router /admin/credentials/{code} [get]
func (h *AdminCredentialHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	code, cause, respErr := validate.RequireParam(c, "code")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.credentialService.Get(ctx, code)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Patch 部分更新通行碼
// @Summary 部分更新通行碼
// @Description 提供 validDays 時 expiresAt 由現在重新計算
// @Tags Admin-Credential
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param code path string true "通行碼"
// @Param body body dto.PatchCredentialDto true "要更新的欄位"
// @Success 200 {object} dto.CredentialResponseDto
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/credentials/{code} [patch]
func (h *AdminCredentialHandler) Patch(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	code, cause, respErr := validate.RequireParam(c, "code")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.PatchCredentialDto
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.credentialService.Patch(ctx, code, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 刪除通行碼
// @Summary 刪除通行碼（連同用量紀錄）
// @Tags Admin-Credential
// @Security BearerAuth
// @Produce json
// @Param code path string true "通行碼"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/credentials/{code} [delete]
func (h *AdminCredentialHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	code, cause, respErr := validate.RequireParam(c, "code")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.credentialService.Delete(ctx, code); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "credential deleted successfully")
}

// Usages 通行碼的使用者用量
// @Summary 取得通行碼用量
// @Tags Admin-Credential
// @Security BearerAuth
// @Produce json
// @Param code path string true "通行碼"
// @Success 200 {array} dto.CredentialUsageResponseDto
// @Router /admin/credentials/{code}/usages [get]
func (h *AdminCredentialHandler) Usages(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	code, cause, respErr := validate.RequireParam(c, "code")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.usageService.ListByCode(ctx, code)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
