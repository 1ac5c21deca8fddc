package service

import (
	"context"
	"strings"

	"imagegate/internal/core"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/telemetry"
)

type UsageService struct {
	trace       *telemetry.Trace
	credentials *CredentialService
	usageStore  CredentialUsageStore
}

func NewUsageService(trace *telemetry.Trace, credentials *CredentialService, usageStore CredentialUsageStore) *UsageService {
	return &UsageService{trace: trace, credentials: credentials, usageStore: usageStore}
}

// Increment 成功完成一次消耗型操作後呼叫；特權通行碼不記錄
func (s *UsageService) Increment(ctx context.Context, code string, userID string, category core.UsageCategory) (returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meta := core.TraceUsageWriteMeta{UserID: userID, Category: string(category)}
	defer func() { s.trace.ApplyTraceAttributes(span, meta) }()

	if s.credentials.IsPrivileged(code) {
		meta.Code, meta.Skipped = core.AdminCredentialLabel, true
		return nil
	}

	normalized := strings.ToLower(strings.TrimSpace(code))
	meta.Code = normalized
	matched, upserted, err := s.usageStore.Increment(ctx, userID, normalized, category)
	if err != nil {
		return cErr.DatabaseError("database Increment usage error")
	}
	meta.MatchedCount, meta.UpsertedCount = matched, upserted
	return nil
}

// ListByCode 管理端查詢某通行碼的每位使用者用量
func (s *UsageService) ListByCode(ctx context.Context, code string) ([]*dto.CredentialUsageResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	usages, err := s.usageStore.ListByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		return nil, cErr.DatabaseError("database ListByCode usage error")
	}
	resp := make([]*dto.CredentialUsageResponseDto, len(usages))
	for i, u := range usages {
		resp[i] = modelToUsageResponseDto(u)
	}
	return resp, nil
}

func modelToUsageResponseDto(m *model.CredentialUsage) *dto.CredentialUsageResponseDto {
	return &dto.CredentialUsageResponseDto{
		UserID:          m.UserID,
		CredentialCode:  m.CredentialCode,
		ImageCount:      m.ImageCount,
		SuggestionCount: m.SuggestionCount,
		CreatedAt:       m.CreatedAt,
	}
}
