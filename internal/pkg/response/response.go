package response

import (
	"errors"
	"net/http"

	cErr "imagegate/internal/pkg/error"

	"github.com/gin-gonic/gin"
)

// Response 所有 /api 回應的信封
type Response struct {
	RequestID   string `json:"requestID"`
	Code        int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// 交給 Response middleware 包裝的 context key
const (
	ContextDataKey    = "data"
	ContextMessageKey = "message"
)

// Create 與 Success 相同，預設描述不同；狀態碼由 handler 自行設定
func Create(c *gin.Context, data any) {
	setData(c, data, "Create Success")
}

func Success(c *gin.Context, data any) {
	setData(c, data, "Request Success")
}

// gin.H 內的 "message" 會被取出當作描述，不留在 data
func setData(c *gin.Context, data any, fallback string) {
	message := fallback
	if h, ok := data.(gin.H); ok {
		if m, ok := h["message"].(string); ok && m != "" {
			message = m
			delete(h, "message")
		}
	}
	c.Set(ContextDataKey, data)
	c.Set(ContextMessageKey, message)
	c.Abort()
}

func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func Fail(c *gin.Context, requestID string, httpCode int, errorCode int, msg string, desc string) {
	c.AbortWithStatusJSON(httpCode, Response{
		RequestID:   requestID,
		Code:        errorCode,
		Data:        nil,
		Message:     msg,
		Description: desc,
	})
}

// FailByErr 非 *cErr.Error 一律視為 500，不把內部錯誤訊息外流
func FailByErr(c *gin.Context, requestID string, err error) {
	var appErr *cErr.Error
	if errors.As(err, &appErr) {
		Fail(c, requestID, appErr.HttpCode(), appErr.ErrorCode(), appErr.Error(), appErr.ErrorDesc())
		return
	}
	Fail(c, requestID, http.StatusInternalServerError, cErr.INTERNAL_ERROR, "internal-error", "internal error")
}
