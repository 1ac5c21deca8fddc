package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imagegate/internal/core"
	fluentdModel "imagegate/internal/database/fluentd/model"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/service/provider"
	"imagegate/internal/telemetry"

	"go.uber.org/zap"
)

// 對外的 groupBy 參數對應到 token_usages 欄位
var costGroupFields = map[string]string{
	"":                "",
	"operation_type":  "operationType",
	"credential_code": "credentialCode",
	"model_name":      "modelName",
}

// ComputeCost 依計價表計算單次呼叫成本（美元）
func ComputeCost(modelName string, tokens provider.TokenCounts, images int) float64 {
	p := core.PricingFor(modelName)
	return float64(images)*p.PerImage +
		float64(tokens.Prompt)/1e6*p.InputPerMillion +
		float64(tokens.Completion)/1e6*p.OutputPerMillion +
		float64(tokens.Thinking)/1e6*p.ThinkingPerMillion
}

type CostService struct {
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	logger      *zap.Logger
	credentials *CredentialService
	tokenStore  TokenUsageStore
	usageLogger UsageLogger
	now         func() time.Time
}

func NewCostService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	credentials *CredentialService,
	tokenStore TokenUsageStore,
	usageLogger UsageLogger,
) *CostService {
	return &CostService{
		trace:       trace,
		metric:      metric,
		logger:      logger,
		credentials: credentials,
		tokenStore:  tokenStore,
		usageLogger: usageLogger,
		now:         time.Now,
	}
}

// NormalizeCredential 特權通行碼記為 admin，其餘小寫，空字串維持空字串
func (s *CostService) NormalizeCredential(code string) string {
	if code == "" {
		return ""
	}
	if s.credentials.IsPrivileged(code) {
		return core.AdminCredentialLabel
	}
	return strings.ToLower(strings.TrimSpace(code))
}

// Record 寫入一次供應商呼叫的用量；任何寫入失敗只記 log，不影響呼叫端
func (s *CostService) Record(
	ctx context.Context,
	operation core.OperationType,
	modelName string,
	tokens provider.TokenCounts,
	images int,
	credentialCode string,
) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if tokens.Total == 0 {
		tokens.Total = tokens.Prompt + tokens.Completion + tokens.Thinking
	}
	cost := ComputeCost(modelName, tokens, images)
	code := s.NormalizeCredential(credentialCode)

	s.trace.ApplyTraceAttributes(span, core.TraceCostMeta{
		Operation:        string(operation),
		Model:            modelName,
		Credential:       code,
		TokensPrompt:     tokens.Prompt,
		TokensCompletion: tokens.Completion,
		TokensThinking:   tokens.Thinking,
		TokensTotal:      tokens.Total,
		Images:           images,
		Cost:             cost,
	})
	s.metric.AddProviderCost(modelName, string(operation), cost)

	now := s.now().UTC()
	if _, err := s.tokenStore.Create(ctx, &model.TokenUsage{
		OperationType:    operation,
		ModelName:        modelName,
		PromptTokens:     tokens.Prompt,
		CompletionTokens: tokens.Completion,
		ThinkingTokens:   tokens.Thinking,
		TotalTokens:      tokens.Total,
		ImagesGenerated:  images,
		Cost:             cost,
		CredentialCode:   code,
		CreatedAt:        now,
	}); err != nil {
		s.logger.Warn("failed to record token usage",
			append(telemetry.SpanFields(span),
				zap.String("operation", string(operation)),
				zap.String("model", modelName),
				zap.Error(err))...)
	}

	if s.usageLogger == nil {
		return
	}
	if err := s.usageLogger.LogUsage(ctx, fluentdModel.ProviderUsageLog{
		Operation:        string(operation),
		Model:            modelName,
		CredentialCode:   code,
		TokensPrompt:     tokens.Prompt,
		TokensCompletion: tokens.Completion,
		TokensThinking:   tokens.Thinking,
		TokensTotal:      tokens.Total,
		ImagesGenerated:  images,
		Cost:             cost,
	}); err != nil {
		s.logger.Warn("failed to ship usage log", append(telemetry.SpanFields(span), zap.Error(err))...)
	}
}

// Aggregate groupBy 可為空字串（總計）、operation_type、credential_code、model_name
func (s *CostService) Aggregate(ctx context.Context, groupBy string) ([]*model.TokenUsageAggregate, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	field, ok := costGroupFields[groupBy]
	if !ok {
		return nil, cErr.BadRequestParams(fmt.Sprintf("unsupported groupBy %q", groupBy))
	}
	results, err := s.tokenStore.Aggregate(ctx, field)
	if err != nil {
		return nil, cErr.DatabaseError("database Aggregate token usage error")
	}
	if results == nil {
		results = []*model.TokenUsageAggregate{}
	}
	return results, nil
}

// Summary 一次回傳總計與三種分組
func (s *CostService) Summary(ctx context.Context) (*dto.CostSummaryResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	total, err := s.Aggregate(ctx, "")
	if err != nil {
		return nil, err
	}
	byOperation, err := s.Aggregate(ctx, "operation_type")
	if err != nil {
		return nil, err
	}
	byCredential, err := s.Aggregate(ctx, "credential_code")
	if err != nil {
		return nil, err
	}
	byModel, err := s.Aggregate(ctx, "model_name")
	if err != nil {
		return nil, err
	}

	resp := &dto.CostSummaryResponseDto{
		Total:        &model.TokenUsageAggregate{},
		ByOperation:  byOperation,
		ByCredential: byCredential,
		ByModel:      byModel,
	}
	if len(total) > 0 {
		resp.Total = total[0]
	}
	return resp, nil
}
