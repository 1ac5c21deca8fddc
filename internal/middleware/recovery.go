package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"
	"unicode/utf8"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/database/fluentd/model"
	"imagegate/internal/database/fluentd/repository"
	cErr "imagegate/internal/pkg/error"
	res "imagegate/internal/pkg/response"
	"imagegate/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if startTime, exists := c.Get(contextDurationKey); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		}
		reqID := requestID(c)

		// ---- panic recover 必須在 c.Next() 之前註冊 ----
		defer func() {
			if rec := recover(); rec != nil {
				duration := time.Since(requestTime)

				ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))

				meta := core.TracePanicMeta{
					Path:       c.Request.URL.Path,
					Method:     c.Request.Method,
					ClientIP:   c.ClientIP(),
					UserAgent:  c.Request.UserAgent(),
					DurationMs: float64(duration.Milliseconds()),
					Message:    toSafeString(fmt.Sprint(rec)),
					Stack:      toSafeStack(debug.Stack()),
					Status:     http.StatusInternalServerError,
				}
				middleware.trace.ApplyTraceAttributes(span, meta)

				fields := []zap.Field{
					zap.String("path", meta.Path),
					zap.String("method", meta.Method),
					zap.String("client_ip", meta.ClientIP),
					zap.String("user_agent", meta.UserAgent),
					zap.Duration("duration", duration),
					zap.String("panic", meta.Message),
					zap.String("stacktrace", meta.Stack),
					zap.String("requestId", reqID),
				}
				middleware.logger.Error("[PANIC] Recovered", append(fields, telemetry.SpanFields(span)...)...)

				err := cErr.InternalServer("unexpected panic")
				end(err)
				// 尚未回寫才輸出
				if !c.Writer.Written() {
					res.FailByErr(c, reqID, err)
				}
				middleware.logResponse(ctx, reqID, cErr.INTERNAL_ERROR, http.StatusInternalServerError, meta.Message)
				middleware.metric.ObserveOperation(c.FullPath(), errors.New(meta.Message), "panic")
				c.Abort()
			}
		}()

		// 執行下游
		c.Next()

		// ---- 統一處理非 panic 的 gin errors（若尚未回寫）----
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		duration := time.Since(requestTime)
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
		defer end(nil)

		// 找第一個 *cErr.Error
		for _, e := range c.Errors {
			var appErr *cErr.Error
			if !errors.As(e.Err, &appErr) {
				continue
			}
			middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
				Code:       appErr.ErrorCode(),
				Message:    appErr.Error(),
				Detail:     appErr.ErrorDesc(),
				DurationMs: float64(duration.Milliseconds()),
				Status:     appErr.HttpCode(),
			})
			fields := []zap.Field{
				zap.Int("code", appErr.ErrorCode()),
				zap.String("data", appErr.ErrorDesc()),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("duration", duration),
				zap.String("requestId", reqID),
			}
			middleware.logger.Warn(appErr.Error(), append(fields, telemetry.SpanFields(span)...)...)
			middleware.logResponse(ctx, reqID, appErr.ErrorCode(), appErr.HttpCode(), appErr.Error())
			middleware.metric.ObserveOperation(c.FullPath(), appErr, strconv.Itoa(appErr.ErrorCode()))
			res.FailByErr(c, reqID, appErr)
			c.Abort()
			return
		}

		// 其餘未知錯誤
		unknown := c.Errors.String()
		middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
			Code:       cErr.INTERNAL_ERROR,
			Message:    "unknown-error",
			Detail:     toSafeString(unknown),
			DurationMs: float64(duration.Milliseconds()),
			Status:     http.StatusInternalServerError,
		})
		fields := []zap.Field{
			zap.String("error", unknown),
			zap.Duration("duration", duration),
			zap.String("requestId", reqID),
		}
		middleware.logger.Warn("[ERROR] unknown", append(fields, telemetry.SpanFields(span)...)...)
		middleware.logResponse(ctx, reqID, cErr.INTERNAL_ERROR, http.StatusInternalServerError, toSafeString(unknown))
		middleware.metric.ObserveOperation(c.FullPath(), c.Errors.Last(), "unknown")
		res.Fail(c, reqID, http.StatusInternalServerError, cErr.INTERNAL_ERROR, "unknown-error", unknown)
		c.Abort()
	}
}

func (middleware *Recovery) logResponse(ctx context.Context, reqID string, code, status int, msg string) {
	err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
		RequestID:  reqID,
		Code:       code,
		StatusCode: status,
		Error:      msg,
		ResponseTS: time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
	})
	if err != nil {
		middleware.logger.Debug("fluentd response log failed", zap.Error(err))
	}
}

// ---- helpers ----

func toSafeString(s string) string {
	const max = 8000
	if utf8.ValidString(s) {
		if len(s) > max {
			return s[:max] + "…"
		}
		return s
	}
	b := []byte(s)
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

func toSafeStack(b []byte) string {
	const max = 16000
	if utf8.Valid(b) {
		if len(b) > max {
			return string(b[:max]) + "…"
		}
		return string(b)
	}
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}
