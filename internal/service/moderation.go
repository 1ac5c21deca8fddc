package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"imagegate/internal/core"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/service/provider"
	"imagegate/internal/telemetry"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	moderationStatusApproved = "approved"
	moderationStatusRejected = "rejected"
	moderationStatusError    = "error"
)

type ModerationService struct {
	trace        *telemetry.Trace
	metric       *telemetry.Metric
	logger       *zap.Logger
	limiter      RateLimiter
	provider     provider.Provider
	cost         *CostService
	settingStore SettingStore
	failureStore ModerationFailureStore
	now          func() time.Time
}

func NewModerationService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	limiter RateLimiter,
	aiProvider provider.Provider,
	cost *CostService,
	settingStore SettingStore,
	failureStore ModerationFailureStore,
) *ModerationService {
	return &ModerationService{
		trace:        trace,
		metric:       metric,
		logger:       logger,
		limiter:      limiter,
		provider:     aiProvider,
		cost:         cost,
		settingStore: settingStore,
		failureStore: failureStore,
		now:          time.Now,
	}
}

// Screen 回傳內容是否可放行；任何錯誤都視為不通過
func (s *ModerationService) Screen(ctx context.Context, content string, kind core.ModerationKind, credentialCode string) bool {
	return s.Review(ctx, content, kind, credentialCode) == nil
}

// Review 與 Screen 相同，但保留拒絕原因：限流回傳 RateLimitExceeded，其餘一律 ModerationRejected
func (s *ModerationService) Review(ctx context.Context, content string, kind core.ModerationKind, credentialCode string) error {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	meta := core.TraceModerationMeta{Kind: string(kind), ContentLength: len(content)}
	defer func() { s.trace.ApplyTraceAttributes(span, meta) }()

	guidelines, isDefault := s.currentGuidelines(ctx)
	meta.DefaultRules = isDefault

	if !s.limiter.Admit(ctx) {
		meta.Status, meta.Reason = moderationStatusError, "rate limited"
		s.metric.IncModerationReject(string(kind), moderationStatusError)
		return cErr.RateLimitExceeded("AI provider rate limit reached, please retry later")
	}

	result, err := s.provider.Moderate(ctx, content, guidelines)
	if result != nil {
		s.cost.Record(ctx, core.OperationModeration, result.Model, result.Usage, 0, credentialCode)
	}
	if err != nil {
		meta.Status, meta.Reason = moderationStatusError, err.Error()
		s.metric.IncModerationReject(string(kind), moderationStatusError)
		s.logger.Warn("moderation call failed, rejecting content",
			append(telemetry.SpanFields(span), zap.String("kind", string(kind)), zap.Error(err))...)
		return cErr.ModerationRejected("content could not be verified")
	}

	if result.IsAppropriate {
		meta.Appropriate, meta.Status = true, moderationStatusApproved
		return nil
	}

	meta.Status, meta.Reason = moderationStatusRejected, result.RejectionReason
	s.metric.IncModerationReject(string(kind), moderationStatusRejected)
	if _, err := s.failureStore.Create(ctx, &model.ModerationFailure{
		ContentText:     content,
		RejectionReason: result.RejectionReason,
		OperationKind:   kind,
		CreatedAt:       s.now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to record moderation failure", append(telemetry.SpanFields(span), zap.Error(err))...)
	}
	reason := result.RejectionReason
	if reason == "" {
		reason = "content violates moderation guidelines"
	}
	return cErr.ModerationRejected(reason)
}

// 每次都重新讀取，管理端修改後立即生效
func (s *ModerationService) currentGuidelines(ctx context.Context) (string, bool) {
	setting, err := s.settingStore.Get(ctx, core.SettingModerationGuidelines)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("failed to load moderation guidelines, using defaults", zap.Error(err))
		}
		return core.DefaultModerationGuidelines, true
	}
	if strings.TrimSpace(setting.Value) == "" {
		return core.DefaultModerationGuidelines, true
	}
	return setting.Value, false
}

func (s *ModerationService) GetGuidelines(ctx context.Context) (*dto.GuidelinesResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	setting, err := s.settingStore.Get(ctx, core.SettingModerationGuidelines)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &dto.GuidelinesResponseDto{Guidelines: core.DefaultModerationGuidelines, IsDefault: true}, nil
		}
		return nil, cErr.DatabaseError("database Get setting error")
	}
	updatedAt := setting.UpdatedAt
	return &dto.GuidelinesResponseDto{Guidelines: setting.Value, UpdatedAt: &updatedAt}, nil
}

func (s *ModerationService) SetGuidelines(ctx context.Context, guidelines string) (*dto.GuidelinesResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if strings.TrimSpace(guidelines) == "" {
		return nil, cErr.BadRequestBody("guidelines must not be empty")
	}
	if err := s.settingStore.Set(ctx, core.SettingModerationGuidelines, guidelines); err != nil {
		return nil, cErr.DatabaseError("database Set setting error")
	}
	return s.GetGuidelines(ctx)
}

// ResetGuidelines 刪除自訂規則，回到內建預設
func (s *ModerationService) ResetGuidelines(ctx context.Context) (*dto.GuidelinesResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if err := s.settingStore.Delete(ctx, core.SettingModerationGuidelines); err != nil {
		return nil, cErr.DatabaseError("database Delete setting error")
	}
	return &dto.GuidelinesResponseDto{Guidelines: core.DefaultModerationGuidelines, IsDefault: true}, nil
}

func (s *ModerationService) ListFailures(ctx context.Context, limit int64) ([]*model.ModerationFailure, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	failures, err := s.failureStore.ListRecent(ctx, limit)
	if err != nil {
		return nil, cErr.DatabaseError("database ListRecent moderation failure error")
	}
	if failures == nil {
		failures = []*model.ModerationFailure{}
	}
	return failures, nil
}
