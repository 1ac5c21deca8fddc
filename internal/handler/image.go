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

type ImageHandler struct {
	trace        *telemetry.Trace
	imageService *service.ImageService
}

func NewImageHandler(trace *telemetry.Trace, imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{trace: trace, imageService: imageService}
}

// Generate 依提示詞生成圖片
// @Summary 生成圖片
// @Description 需有效通行碼；內容先經審查（通行碼可略過），成功後扣一次圖片配額
// @Tags Image
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageDto true "提示詞與通行碼"
// @Success 201 {object} dto.ImageResponseDto
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /images/generate [post]
func (h *ImageHandler) Generate(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.GenerateImageDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.imageService.Generate(ctx, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
	response.Create(c, res)
}

// Edit 以既有圖片為底編輯
// @Summary 編輯圖片
// @Tags Image
// @Accept json
// @Produce json
// @Param body body dto.EditImageDto true "來源圖片與編輯指示"
// @Success 201 {object} dto.ImageResponseDto
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /images/edit [post]
func (h *ImageHandler) Edit(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.EditImageDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.imageService.Edit(ctx, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
	response.Create(c, res)
}

// Gallery 使用者圖庫
// @Summary 使用者圖庫
// @Tags Image
// @Produce json
// @Param userGuid query string true "使用者 guid"
// @Success 200 {object} dto.ImageListResponseDto
// @Failure 400 {object} map[string]string
// @Router /images/gallery [get]
func (h *ImageHandler) Gallery(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	userGUID, cause, respErr := validate.RequireQuery(c, "userGuid")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.imageService.Gallery(ctx, userGUID)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Get 圖片資訊
// @Summary 取得圖片資訊
// @Tags Image
// @Produce json
// @Param imageID path string true "Image ID"
// @Success 200 {object} dto.ImageResponseDto
// @Failure 404 {object} map[string]string
// @Router /images/{imageID} [get]
func (h *ImageHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	imageID, cause, respErr := validate.ParseUUID(c, "imageID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.imageService.Get(ctx, imageID)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// File 圖片檔案
// @Summary 取得 PNG 檔案
// @Tags Image
// @Produce png
// @Param imageID path string true "Image ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /images/{imageID}/file [get]
func (h *ImageHandler) File(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	imageID, cause, respErr := validate.ParseUUID(c, "imageID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	data, err := h.imageService.File(ctx, imageID)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// Delete 刪除圖片
// @Summary 刪除圖片
// @Tags Image
// @Produce json
// @Param imageID path string true "Image ID"
// @Param userGuid query string true "擁有者 guid"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /images/{imageID} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	imageID, cause, respErr := validate.ParseUUID(c, "imageID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	userGUID, cause, respErr := validate.RequireQuery(c, "userGuid")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.imageService.Delete(ctx, imageID, userGUID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "image deleted successfully")
}
