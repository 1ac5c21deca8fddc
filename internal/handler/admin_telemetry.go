package handler

import (
	"imagegate/internal/pkg/response"
	"imagegate/internal/service"
	"imagegate/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type AdminTelemetryHandler struct {
	trace       *telemetry.Trace
	costService *service.CostService
}

func NewAdminTelemetryHandler(trace *telemetry.Trace, costService *service.CostService) *AdminTelemetryHandler {
	return &AdminTelemetryHandler{trace: trace, costService: costService}
}

// Tokens token 與成本彙總
// @Summary token 與成本彙總
// @Tags Admin-Telemetry
// @Security BearerAuth
// @Produce json
// @Param groupBy query string false "分組欄位" Enums(operation_type, credential_code, model_name)
// @Success 200 {array} model.TokenUsageAggregate
// @Failure 400 {object} map[string]string
// @Router /admin/telemetry/tokens [get]
func (h *AdminTelemetryHandler) Tokens(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.costService.Aggregate(ctx, c.Query("groupBy"))
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Summary 成本總覽
// @Summary 成本總覽（總計與三種分組）
// @Tags Admin-Telemetry
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.CostSummaryResponseDto
// @Router /admin/telemetry/summary [get]
func (h *AdminTelemetryHandler) Summary(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	res, err := h.costService.Summary(ctx)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}
