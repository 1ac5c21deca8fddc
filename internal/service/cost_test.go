package service

import (
	"context"
	"errors"
	"testing"

	"imagegate/internal/core"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/service/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCost(t *testing.T) {
	assert.InDelta(t, 0.078, ComputeCost("gemini-2.5-flash-image-preview", provider.TokenCounts{}, 2), 1e-9)
	assert.InDelta(t, 0.0003, ComputeCost("gemini-2.5-flash-lite", provider.TokenCounts{Prompt: 1000, Completion: 500}, 0), 1e-9)
	assert.InDelta(t, 0.042, ComputeCost("gpt-image-1", provider.TokenCounts{}, 1), 1e-9)
	// 未知模型採用預設計價
	assert.InDelta(t, 0.039, ComputeCost("some-new-model", provider.TokenCounts{}, 1), 1e-9)
}

func TestCostService_Record(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	f.cost.Record(ctx, core.OperationGenerateImage, "gemini-2.5-flash-image-preview", provider.TokenCounts{}, 2, "ABC")
	f.cost.Record(ctx, core.OperationSuggestPrompts, "gemini-2.5-flash-lite", provider.TokenCounts{Prompt: 1000, Completion: 500}, 0, testAdminSecret)
	f.cost.Record(ctx, core.OperationDescribeImage, "gemini-2.5-flash-lite", provider.TokenCounts{}, 0, "")

	usages := f.tokenStore.all()
	require.Len(t, usages, 3)

	assert.Equal(t, core.OperationGenerateImage, usages[0].OperationType)
	assert.Equal(t, "abc", usages[0].CredentialCode)
	assert.Equal(t, 2, usages[0].ImagesGenerated)
	assert.InDelta(t, 0.078, usages[0].Cost, 1e-9)
	assert.Equal(t, f.now, usages[0].CreatedAt)

	assert.Equal(t, core.AdminCredentialLabel, usages[1].CredentialCode)
	assert.Equal(t, 1500, usages[1].TotalTokens)
	assert.InDelta(t, 0.0003, usages[1].Cost, 1e-9)

	assert.Equal(t, "", usages[2].CredentialCode)

	require.Len(t, f.usageLogger.logs, 3)
	assert.Equal(t, "generate_image", f.usageLogger.logs[0].Operation)
	assert.InDelta(t, 0.078, f.usageLogger.logs[0].Cost, 1e-9)
}

func TestCostService_RecordSwallowsStoreErrors(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.tokenStore.err = errors.New("mongo down")

	assert.NotPanics(t, func() {
		f.cost.Record(context.Background(), core.OperationModeration, "gemini-2.5-flash-lite", provider.TokenCounts{Prompt: 10}, 0, "abc")
	})
	assert.Empty(t, f.tokenStore.all())
	assert.Len(t, f.usageLogger.logs, 1)
}

func TestCostService_Aggregate(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	f.cost.Record(ctx, core.OperationGenerateImage, "gemini-2.5-flash-image-preview", provider.TokenCounts{}, 1, "abc")
	f.cost.Record(ctx, core.OperationGenerateImage, "gemini-2.5-flash-image-preview", provider.TokenCounts{}, 1, "xyz")
	f.cost.Record(ctx, core.OperationModeration, "gemini-2.5-flash-lite", provider.TokenCounts{Prompt: 100, Completion: 10}, 0, "abc")

	byModel, err := f.cost.Aggregate(ctx, "model_name")
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gemini-2.5-flash-image-preview", byModel[0].Group)
	assert.Equal(t, int64(2), byModel[0].RequestCount)
	assert.InDelta(t, 0.078, byModel[0].Cost, 1e-9)

	byCredential, err := f.cost.Aggregate(ctx, "credential_code")
	require.NoError(t, err)
	assert.Len(t, byCredential, 2)

	byOperation, err := f.cost.Aggregate(ctx, "operation_type")
	require.NoError(t, err)
	assert.Len(t, byOperation, 2)

	total, err := f.cost.Aggregate(ctx, "")
	require.NoError(t, err)
	require.Len(t, total, 1)
	assert.Equal(t, int64(3), total[0].RequestCount)
	assert.Equal(t, int64(2), total[0].ImagesGenerated)

	_, err = f.cost.Aggregate(ctx, "user")
	assert.True(t, cErr.Is(err, cErr.BAD_REQUEST_PARAMS))
}

func TestCostService_AggregateOrderAndAnonymous(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	f.cost.Record(ctx, core.OperationModeration, "gemini-2.5-flash-lite", provider.TokenCounts{Prompt: 100}, 0, "")
	f.cost.Record(ctx, core.OperationModeration, "gemini-2.5-flash-lite", provider.TokenCounts{Prompt: 100}, 0, "cheap")
	f.cost.Record(ctx, core.OperationGenerateImage, "gpt-image-1", provider.TokenCounts{}, 1, "pricey")

	byModel, err := f.cost.Aggregate(ctx, "model_name")
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gpt-image-1", byModel[0].Group)
	assert.Greater(t, byModel[0].Cost, byModel[1].Cost)

	byCredential, err := f.cost.Aggregate(ctx, "credential_code")
	require.NoError(t, err)
	require.Len(t, byCredential, 2)
	assert.Equal(t, "pricey", byCredential[0].Group)
	assert.Equal(t, "cheap", byCredential[1].Group)
}

func TestCostService_Summary(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	summary, err := f.cost.Summary(ctx)
	require.NoError(t, err)
	require.NotNil(t, summary.Total)
	assert.Equal(t, int64(0), summary.Total.RequestCount)
	assert.NotNil(t, summary.ByModel)

	f.cost.Record(ctx, core.OperationEditImage, "gemini-2.5-flash-image-preview", provider.TokenCounts{}, 1, "abc")
	summary, err = f.cost.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total.RequestCount)
	assert.InDelta(t, 0.039, summary.Total.Cost, 1e-9)
	assert.Len(t, summary.ByOperation, 1)
	assert.Len(t, summary.ByCredential, 1)
	assert.Len(t, summary.ByModel, 1)
}
