package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/database/fluentd/model"
	"imagegate/internal/database/fluentd/repository"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/pkg/response"
	"imagegate/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 把 handler 透過 c.Set 放入的 data/message 包成統一回應格式
type Response struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewResponse(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Response {
	return &Response{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

func (middleware *Response) FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if isInfraPath(endpoint) {
			c.Next()
			return
		}

		requestTime := time.Now()
		if startTime, exists := c.Get(contextDurationKey); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		} else {
			c.Set(contextDurationKey, requestTime)
		}

		// 執行下游
		c.Next()

		// 若已經有錯誤交由 Recovery 處理，或已經寫出回應（例如圖片檔案），就不要再動了
		if len(c.Errors) > 0 || c.Writer.Written() {
			return
		}

		// 以「下游結束後」的狀態碼為準
		statusCode := c.Writer.Status()

		// 若 status >= 400：轉為應用錯誤交給 Recovery 統一輸出
		if statusCode >= http.StatusBadRequest {
			response.AbortWithError(c, cErr.FromHttpStatus(statusCode, http.StatusText(statusCode)))
			return
		}

		// 未經 response.Success/Create 的路由（例如 404 fallthrough）不包裝
		data, exists := c.Get(response.ContextDataKey)
		if !exists {
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanResponseMiddleware))
		defer end(nil)

		if data == nil {
			data = map[string]any{}
		}
		msg, _ := c.Get(response.ContextMessageKey)
		message := "Request Success"
		if s, ok := msg.(string); ok && s != "" {
			message = s
		}

		reqID := requestID(c)
		duration := time.Since(requestTime)

		middleware.trace.ApplyTraceAttributes(span, core.TraceResponseMeta{
			Path:       c.Request.URL.Path,
			Method:     c.Request.Method,
			Status:     statusCode,
			Message:    message,
			Code:       0,
			DurationMs: float64(duration.Milliseconds()),
			Data:       safePreviewJSON(data, 2000),
		})

		fields := []zap.Field{
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
			zap.String("requestId", reqID),
		}
		middleware.logger.Info("[Response] "+message, append(fields, telemetry.SpanFields(span)...)...)

		// fluentd
		respBody, _ := json.Marshal(data)
		responseMeta := model.ResponseLog{
			RequestID:  reqID,
			Code:       0,
			StatusCode: statusCode,
			Body:       toSafePreview(respBody, 4000),
			ResponseTS: time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
		}
		if err := middleware.fluentdRepository.LogResponse(ctx, responseMeta); err != nil {
			middleware.logger.Debug("fluentd response log failed", zap.Error(err))
		}
		middleware.metric.ObserveOperation(endpoint, nil, "")

		// 封裝統一回應
		res := response.Response{
			RequestID:   reqID,
			Code:        0,
			Data:        data,
			Message:     "OK",
			Description: message,
		}

		jsonBytes, err := json.Marshal(res)
		if err != nil {
			// Marshal 失敗視為 500，交給 Recovery 處理
			response.AbortWithError(c, cErr.InternalServer("marshal response failed"))
			return
		}

		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Writer.WriteHeader(statusCode) // handler 可能設了 201
		if _, werr := c.Writer.Write(jsonBytes); werr != nil {
			middleware.logger.Warn("write response failed", zap.Error(werr), zap.String("requestId", reqID))
		}
	}
}

// safePreviewJSON 會把資料序列化為 JSON 字串（UTF-8），並限制長度。
func safePreviewJSON(data any, max int) string {
	switch v := data.(type) {
	case string:
		var js any
		if err := json.Unmarshal([]byte(v), &js); err != nil {
			if len(v) > max {
				return v[:max] + "…"
			}
			return v
		}
		b, _ := json.Marshal(js)
		out := string(b)
		if len(out) > max {
			return out[:max] + "…"
		}
		return out
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("[marshal error: %v]", err)
		}
		out := string(b)
		if len(out) > max {
			return out[:max] + "…"
		}
		return out
	}
}
