package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	DenyReasonUnauthorized  = "unauthorized"
	DenyReasonQuotaExceeded = "quota_exceeded"
)

// Validation 通行碼驗證結果；Allowed=false 時 Reason 說明原因
type Validation struct {
	Allowed          bool
	BypassModeration bool
	Backend          core.ImageBackend
	Reason           string
	IsAdmin          bool
	Used             int
	Quota            int
}

// Err 將拒絕原因轉為對應的應用錯誤
func (v *Validation) Err() error {
	if v == nil || v.Allowed {
		return nil
	}
	if v.Reason == DenyReasonQuotaExceeded {
		return cErr.QuotaExceeded(fmt.Sprintf("quota exceeded (%d/%d)", v.Used, v.Quota))
	}
	return cErr.Unauthorized("invalid or expired access code")
}

type CredentialService struct {
	trace           *telemetry.Trace
	metric          *telemetry.Metric
	logger          *zap.Logger
	adminSecret     string
	credentialStore CredentialStore
	usageStore      CredentialUsageStore
	now             func() time.Time
}

func NewCredentialService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	conf *config.Configuration,
	credentialStore CredentialStore,
	usageStore CredentialUsageStore,
) *CredentialService {
	return &CredentialService{
		trace:           trace,
		metric:          metric,
		logger:          logger,
		adminSecret:     conf.App.AdminSecret,
		credentialStore: credentialStore,
		usageStore:      usageStore,
		now:             time.Now,
	}
}

// IsPrivileged 特權通行碼比對大小寫
func (s *CredentialService) IsPrivileged(code string) bool {
	return s.adminSecret != "" && code == s.adminSecret
}

// NormalizeCode 一般通行碼一律小寫；特權通行碼原樣保留
func (s *CredentialService) NormalizeCode(code string) string {
	if s.IsPrivileged(code) {
		return code
	}
	return strings.ToLower(strings.TrimSpace(code))
}

// Validate 檢查通行碼是否可用於指定類別；只讀取（必要時建立 0 次的用量），不增加計數
func (s *CredentialService) Validate(ctx context.Context, code string, userID string, category core.UsageCategory) (_ *Validation, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meta := core.TraceCredentialMeta{Op: "validate", UserID: userID, Category: string(category)}
	defer func() { s.trace.ApplyTraceAttributes(span, meta) }()

	if s.IsPrivileged(code) {
		meta.IsAdmin, meta.Allowed = true, true
		return &Validation{Allowed: true, IsAdmin: true, Backend: core.ImageBackendDefault}, nil
	}

	normalized := s.NormalizeCode(code)
	meta.Code = normalized
	if normalized == "" {
		meta.Reason = DenyReasonUnauthorized
		s.metric.IncQuotaDenied(DenyReasonUnauthorized)
		return &Validation{Reason: DenyReasonUnauthorized}, nil
	}

	credential, err := s.credentialStore.GetActiveByCode(ctx, normalized, s.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			meta.Reason = DenyReasonUnauthorized
			s.metric.IncQuotaDenied(DenyReasonUnauthorized)
			return &Validation{Reason: DenyReasonUnauthorized}, nil
		}
		return nil, cErr.DatabaseError("database GetActiveByCode error")
	}

	usage, err := s.usageStore.GetOrCreate(ctx, userID, normalized)
	if err != nil {
		return nil, cErr.DatabaseError("database GetOrCreate usage error")
	}

	quota := credential.QuotaFor(category)
	used := usage.CountFor(category)
	meta.Used, meta.Quota = used, quota
	if used >= quota {
		meta.Reason = DenyReasonQuotaExceeded
		s.metric.IncQuotaDenied(DenyReasonQuotaExceeded)
		return &Validation{Reason: DenyReasonQuotaExceeded, Used: used, Quota: quota}, nil
	}

	backend := credential.ImageBackend
	if !backend.Valid() {
		backend = core.ImageBackendDefault
	}
	meta.Allowed = true
	return &Validation{
		Allowed:          true,
		BypassModeration: credential.BypassModeration,
		Backend:          backend,
		Used:             used,
		Quota:            quota,
	}, nil
}

// Upsert 以小寫 code 整筆覆寫；createdAt 與 expiresAt 由現在起算
func (s *CredentialService) Upsert(ctx context.Context, req *dto.UpsertCredentialDto) (*dto.CredentialResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	code := strings.ToLower(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, cErr.BadRequestBody("code is required")
	}
	if req.ValidDays <= 0 {
		return nil, cErr.BadRequestBody("validDays must be positive")
	}
	backend := req.ImageBackend
	if backend == "" {
		backend = core.ImageBackendDefault
	}
	if !backend.Valid() {
		return nil, cErr.BadRequestBody(fmt.Sprintf("unsupported imageBackend %q", backend))
	}

	now := s.now().UTC()
	saved, err := s.credentialStore.Upsert(ctx, &model.Credential{
		Code:             code,
		ValidDays:        req.ValidDays,
		ImageQuota:       req.ImageQuota,
		SuggestionQuota:  req.SuggestionQuota,
		BypassModeration: req.BypassModeration,
		ImageBackend:     backend,
		CreatedAt:        now,
		ExpiresAt:        expiresAfter(now, req.ValidDays),
	})
	if err != nil {
		return nil, cErr.DatabaseError("database Upsert credential error")
	}
	return s.modelToCredentialResponseDto(saved), nil
}

// Patch 只更新有提供的欄位；validDays 會由現在重新計算 expiresAt
func (s *CredentialService) Patch(ctx context.Context, code string, req *dto.PatchCredentialDto) (*dto.CredentialResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	normalized := strings.ToLower(strings.TrimSpace(code))
	update := bson.M{}
	if req.ValidDays != nil {
		if *req.ValidDays <= 0 {
			return nil, cErr.BadRequestBody("validDays must be positive")
		}
		update["validDays"] = *req.ValidDays
		update["expiresAt"] = expiresAfter(s.now().UTC(), *req.ValidDays)
	}
	if req.ImageQuota != nil {
		update["imageQuota"] = *req.ImageQuota
	}
	if req.SuggestionQuota != nil {
		update["suggestionQuota"] = *req.SuggestionQuota
	}
	if req.BypassModeration != nil {
		update["bypassModeration"] = *req.BypassModeration
	}
	if req.ImageBackend != nil {
		if !req.ImageBackend.Valid() {
			return nil, cErr.BadRequestBody(fmt.Sprintf("unsupported imageBackend %q", *req.ImageBackend))
		}
		update["imageBackend"] = *req.ImageBackend
	}

	var (
		updated *model.Credential
		err     error
	)
	if len(update) == 0 {
		updated, err = s.credentialStore.GetByCode(ctx, normalized)
	} else {
		updated, err = s.credentialStore.UpdateByCode(ctx, normalized, update)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound(fmt.Sprintf("credential %s not found", normalized))
		}
		return nil, cErr.DatabaseError("database UpdateByCode credential error")
	}
	return s.modelToCredentialResponseDto(updated), nil
}

// Delete 刪除通行碼並連帶刪除用量紀錄
func (s *CredentialService) Delete(ctx context.Context, code string) error {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	// 先刪用量：失敗時通行碼仍在，可重試
	normalized := strings.ToLower(strings.TrimSpace(code))
	deleted, err := s.usageStore.DeleteByCode(ctx, normalized)
	if err != nil {
		s.logger.Warn("failed to delete credential usages",
			append(telemetry.SpanFields(span), zap.String("code", normalized), zap.Error(err))...)
		return cErr.DatabaseError("database DeleteByCode usage error")
	}
	if err := s.credentialStore.DeleteByCode(ctx, normalized); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound(fmt.Sprintf("credential %s not found", normalized))
		}
		return cErr.DatabaseError("database DeleteByCode credential error")
	}
	s.logger.Info("credential deleted", zap.String("code", normalized), zap.Int64("usages", deleted))
	return nil
}

// Check 前端預檢；不讀取也不建立用量
func (s *CredentialService) Check(ctx context.Context, code string) (*dto.AccessCheckResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if s.IsPrivileged(code) {
		s.trace.ApplyTraceAttributes(span, core.TraceCredentialMeta{Op: "check", IsAdmin: true, Allowed: true})
		return &dto.AccessCheckResponseDto{Valid: true, IsAdmin: true}, nil
	}
	normalized := s.NormalizeCode(code)
	if normalized == "" {
		return &dto.AccessCheckResponseDto{Valid: false}, nil
	}
	credential, err := s.credentialStore.GetActiveByCode(ctx, normalized, s.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &dto.AccessCheckResponseDto{Valid: false}, nil
		}
		return nil, cErr.DatabaseError("database GetActiveByCode error")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceCredentialMeta{Op: "check", Code: normalized, Allowed: true})
	return &dto.AccessCheckResponseDto{
		Valid: true,
		Quotas: &dto.CredentialQuotasDto{
			ImageQuota:       credential.ImageQuota,
			SuggestionQuota:  credential.SuggestionQuota,
			BypassModeration: credential.BypassModeration,
			ImageBackend:     credential.ImageBackend,
			ExpiresAt:        credential.ExpiresAt,
		},
	}, nil
}

func (s *CredentialService) List(ctx context.Context) ([]*dto.CredentialResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	credentials, err := s.credentialStore.List(ctx)
	if err != nil {
		return nil, cErr.DatabaseError("database List credential error")
	}
	resp := make([]*dto.CredentialResponseDto, len(credentials))
	for i, c := range credentials {
		resp[i] = s.modelToCredentialResponseDto(c)
	}
	return resp, nil
}

func (s *CredentialService) Get(ctx context.Context, code string) (*dto.CredentialResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	normalized := strings.ToLower(strings.TrimSpace(code))
	credential, err := s.credentialStore.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound(fmt.Sprintf("credential %s not found", normalized))
		}
		return nil, cErr.DatabaseError("database GetByCode credential error")
	}
	return s.modelToCredentialResponseDto(credential), nil
}

func expiresAfter(from time.Time, validDays int) time.Time {
	return from.Add(time.Duration(validDays) * 24 * time.Hour)
}

func (s *CredentialService) modelToCredentialResponseDto(m *model.Credential) *dto.CredentialResponseDto {
	return &dto.CredentialResponseDto{
		Code:             m.Code,
		ValidDays:        m.ValidDays,
		ImageQuota:       m.ImageQuota,
		SuggestionQuota:  m.SuggestionQuota,
		BypassModeration: m.BypassModeration,
		ImageBackend:     m.ImageBackend,
		CreatedAt:        m.CreatedAt,
		ExpiresAt:        m.ExpiresAt,
		Expired:          !m.ExpiresAt.After(s.now()),
	}
}
