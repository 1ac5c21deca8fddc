package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"imagegate/internal/core"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialService_UpsertNormalizesCode(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	resp, err := f.credentials.Upsert(ctx, &dto.UpsertCredentialDto{
		Code:       "  SPRING-2025 ",
		ValidDays:  30,
		ImageQuota: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "spring-2025", resp.Code)
	assert.Equal(t, core.ImageBackendDefault, resp.ImageBackend)
	assert.Equal(t, f.now, resp.CreatedAt)
	assert.Equal(t, f.now.Add(30*24*time.Hour), resp.ExpiresAt)
	assert.False(t, resp.Expired)

	validation, err := f.credentials.Validate(ctx, "Spring-2025", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.True(t, validation.Allowed)
	assert.Equal(t, 10, validation.Quota)
}

func TestCredentialService_UpsertRejectsInvalidInput(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	_, err := f.credentials.Upsert(ctx, &dto.UpsertCredentialDto{Code: "abc", ValidDays: 0})
	assert.True(t, cErr.Is(err, cErr.BAD_REQUEST_BODY))

	_, err = f.credentials.Upsert(ctx, &dto.UpsertCredentialDto{Code: "abc", ValidDays: 3, ImageBackend: "dall-e"})
	assert.True(t, cErr.Is(err, cErr.BAD_REQUEST_BODY))

	_, err = f.credentials.Upsert(ctx, &dto.UpsertCredentialDto{Code: "   ", ValidDays: 3})
	assert.True(t, cErr.Is(err, cErr.BAD_REQUEST_BODY))
}

func TestCredentialService_ValidateExpired(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 1, 5, 5, false, core.ImageBackendDefault)

	validation, err := f.credentials.Validate(ctx, "abc", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.True(t, validation.Allowed)

	f.now = f.now.Add(24 * time.Hour)
	validation, err = f.credentials.Validate(ctx, "abc", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.False(t, validation.Allowed)
	assert.Equal(t, DenyReasonUnauthorized, validation.Reason)
	assert.True(t, cErr.Is(validation.Err(), cErr.UNAUTHORIZED))
}

func TestCredentialService_ValidateUnknownOrEmpty(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	for _, code := range []string{"", "nope"} {
		validation, err := f.credentials.Validate(ctx, code, "user-1", core.UsageCategoryImage)
		require.NoError(t, err)
		assert.False(t, validation.Allowed)
		assert.Equal(t, DenyReasonUnauthorized, validation.Reason)
	}
}

func TestCredentialService_ValidateQuotaExceeded(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 2, 1, false, core.ImageBackendDefault)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.usage.Increment(ctx, "abc", "user-1", core.UsageCategoryImage))
	}

	validation, err := f.credentials.Validate(ctx, "ABC", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.False(t, validation.Allowed)
	assert.Equal(t, DenyReasonQuotaExceeded, validation.Reason)
	assert.Equal(t, 2, validation.Used)
	assert.Equal(t, 2, validation.Quota)
	assert.True(t, cErr.Is(validation.Err(), cErr.QUOTA_EXCEEDED))

	// 配額按類別分開計算
	validation, err = f.credentials.Validate(ctx, "abc", "user-1", core.UsageCategorySuggestion)
	require.NoError(t, err)
	assert.True(t, validation.Allowed)

	// 配額按使用者分開計算
	validation, err = f.credentials.Validate(ctx, "abc", "user-2", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.True(t, validation.Allowed)
}

func TestCredentialService_ValidateZeroQuota(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.seedCredential("abc", 30, 0, 0, false, core.ImageBackendDefault)

	validation, err := f.credentials.Validate(context.Background(), "abc", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.False(t, validation.Allowed)
	assert.Equal(t, DenyReasonQuotaExceeded, validation.Reason)
}

func TestCredentialService_ValidateCarriesCredentialSettings(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.seedCredential("vip", 30, 5, 5, true, core.ImageBackendAlternate)

	validation, err := f.credentials.Validate(context.Background(), "VIP", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.True(t, validation.Allowed)
	assert.True(t, validation.BypassModeration)
	assert.Equal(t, core.ImageBackendAlternate, validation.Backend)
	assert.False(t, validation.IsAdmin)
}

func TestCredentialService_PrivilegedCode(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	validation, err := f.credentials.Validate(ctx, testAdminSecret, "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.True(t, validation.Allowed)
	assert.True(t, validation.IsAdmin)
	assert.False(t, validation.BypassModeration)
	assert.Empty(t, f.usageStore.usages)

	// 特權通行碼區分大小寫
	validation, err = f.credentials.Validate(ctx, "s3cret-admin", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.False(t, validation.Allowed)
}

func TestCredentialService_Patch(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)

	f.now = f.now.Add(10 * 24 * time.Hour)
	days, quota := 5, 9
	resp, err := f.credentials.Patch(ctx, "ABC", &dto.PatchCredentialDto{ValidDays: &days, ImageQuota: &quota})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.ValidDays)
	assert.Equal(t, 9, resp.ImageQuota)
	assert.Equal(t, 5, resp.SuggestionQuota)
	assert.Equal(t, f.now.Add(5*24*time.Hour), resp.ExpiresAt)

	backend := core.ImageBackendAlternate
	resp, err = f.credentials.Patch(ctx, "abc", &dto.PatchCredentialDto{ImageBackend: &backend})
	require.NoError(t, err)
	assert.Equal(t, core.ImageBackendAlternate, resp.ImageBackend)

	// 沒有欄位時回傳現況
	resp, err = f.credentials.Patch(ctx, "abc", &dto.PatchCredentialDto{})
	require.NoError(t, err)
	assert.Equal(t, 9, resp.ImageQuota)
}

func TestCredentialService_PatchErrors(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)

	days := 3
	_, err := f.credentials.Patch(ctx, "missing", &dto.PatchCredentialDto{ValidDays: &days})
	assert.True(t, cErr.Is(err, cErr.NOT_FOUND))

	zero := 0
	_, err = f.credentials.Patch(ctx, "abc", &dto.PatchCredentialDto{ValidDays: &zero})
	assert.True(t, cErr.Is(err, cErr.BAD_REQUEST_BODY))

	bad := core.ImageBackend("dall-e")
	_, err = f.credentials.Patch(ctx, "abc", &dto.PatchCredentialDto{ImageBackend: &bad})
	assert.True(t, cErr.Is(err, cErr.BAD_REQUEST_BODY))
}

func TestCredentialService_DeleteCascadesUsage(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	f.seedCredential("other", 30, 5, 5, false, core.ImageBackendDefault)

	require.NoError(t, f.usage.Increment(ctx, "abc", "user-1", core.UsageCategoryImage))
	require.NoError(t, f.usage.Increment(ctx, "abc", "user-2", core.UsageCategorySuggestion))
	require.NoError(t, f.usage.Increment(ctx, "other", "user-1", core.UsageCategoryImage))

	require.NoError(t, f.credentials.Delete(ctx, "ABC"))

	usages, err := f.usage.ListByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, usages)

	usages, err = f.usage.ListByCode(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, usages, 1)

	_, err = f.credentials.Get(ctx, "abc")
	assert.True(t, cErr.Is(err, cErr.NOT_FOUND))

	err = f.credentials.Delete(ctx, "abc")
	assert.True(t, cErr.Is(err, cErr.NOT_FOUND))
}

func TestCredentialService_DeleteRetryableAfterUsageFailure(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	require.NoError(t, f.usage.Increment(ctx, "abc", "user-1", core.UsageCategoryImage))

	f.usageStore.deleteErr = errors.New("connection reset")
	err := f.credentials.Delete(ctx, "abc")
	assert.True(t, cErr.Is(err, cErr.DATABASE_ERROR))

	_, err = f.credentials.Get(ctx, "abc")
	require.NoError(t, err, "credential survives a failed cascade")

	f.usageStore.deleteErr = nil
	require.NoError(t, f.credentials.Delete(ctx, "abc"))
	usages, err := f.usage.ListByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, usages)
}

func TestCredentialService_TrialScenario(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	_, err := f.credentials.Upsert(ctx, &dto.UpsertCredentialDto{Code: "TRIAL", ValidDays: 7, ImageQuota: 2, SuggestionQuota: 5})
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		validation, err := f.credentials.Validate(ctx, "trial", "user-1", core.UsageCategoryImage)
		require.NoError(t, err)
		require.True(t, validation.Allowed, "attempt %d", i)
		assert.Equal(t, i-1, validation.Used)
		require.NoError(t, f.usage.Increment(ctx, "trial", "user-1", core.UsageCategoryImage))
	}

	validation, err := f.credentials.Validate(ctx, "trial", "user-1", core.UsageCategoryImage)
	require.NoError(t, err)
	assert.False(t, validation.Allowed)
	assert.Equal(t, DenyReasonQuotaExceeded, validation.Reason)
	assert.Equal(t, 2, validation.Used)
	assert.Equal(t, 2, validation.Quota)
}

func TestCredentialService_Check(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 7, 3, true, core.ImageBackendAlternate)

	resp, err := f.credentials.Check(ctx, "ABC")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.False(t, resp.IsAdmin)
	require.NotNil(t, resp.Quotas)
	assert.Equal(t, 7, resp.Quotas.ImageQuota)
	assert.Equal(t, 3, resp.Quotas.SuggestionQuota)
	assert.True(t, resp.Quotas.BypassModeration)
	assert.Equal(t, core.ImageBackendAlternate, resp.Quotas.ImageBackend)
	assert.Empty(t, f.usageStore.usages, "check must not create usage rows")

	resp, err = f.credentials.Check(ctx, testAdminSecret)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.True(t, resp.IsAdmin)
	assert.Nil(t, resp.Quotas)

	resp, err = f.credentials.Check(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, resp.Valid)

	f.now = f.now.Add(31 * 24 * time.Hour)
	resp, err = f.credentials.Check(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
}

func TestCredentialService_ListMarksExpired(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("long", 30, 1, 1, false, core.ImageBackendDefault)
	f.seedCredential("short", 1, 1, 1, false, core.ImageBackendDefault)

	f.now = f.now.Add(2 * 24 * time.Hour)
	list, err := f.credentials.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "long", list[0].Code)
	assert.False(t, list[0].Expired)
	assert.Equal(t, "short", list[1].Code)
	assert.True(t, list[1].Expired)
}
