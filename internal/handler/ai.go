package handler

import (
	"strings"

	"imagegate/internal/dto"
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"
	"imagegate/utils/validate"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	trace             *telemetry.Trace
	suggestionService *service.SuggestionService
}

func NewAIHandler(trace *telemetry.Trace, suggestionService *service.SuggestionService) *AIHandler {
	return &AIHandler{trace: trace, suggestionService: suggestionService}
}

// SuggestPrompts 提示詞建議
// @Summary 提示詞建議
// @Description 成功時扣一次建議配額；供應商失敗時回傳預設建議且不扣配額
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.SuggestPromptsDto true "關鍵字與語言"
// @Success 200 {object} dto.SuggestionsResponseDto
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /ai/suggest-prompts [post]
func (h *AIHandler) SuggestPrompts(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.SuggestPromptsDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	req.Language = strings.ToLower(req.Language)

	res, err := h.suggestionService.SuggestPrompts(ctx, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// DescribeImage 圖片描述
// @Summary 取得圖片描述
// @Tags AI
// @Produce json
// @Param imageID path string true "Image ID"
// @Success 200 {object} dto.DescriptionResponseDto
// @Failure 404 {object} map[string]string
// @Router /ai/describe-image/{imageID} [post]
func (h *AIHandler) DescribeImage(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	imageID, cause, respErr := validate.ParseUUID(c, "imageID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.suggestionService.DescribeImage(ctx, imageID)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// SuggestEdits 編輯建議
// @Summary 編輯建議
// @Tags AI
// @Accept json
// @Produce json
// @Param imageID path string true "Image ID"
// @Param body body dto.SuggestEditsDto true "關鍵字與語言"
// @Success 200 {object} dto.SuggestionsResponseDto
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /ai/suggest-edits/{imageID} [post]
func (h *AIHandler) SuggestEdits(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	imageID, cause, respErr := validate.ParseUUID(c, "imageID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.SuggestEditsDto
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	req.Language = strings.ToLower(req.Language)

	res, err := h.suggestionService.SuggestEdits(ctx, imageID, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
