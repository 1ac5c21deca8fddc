package service

import (
	"context"
	"testing"

	"imagegate/internal/core"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/service/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionService_SuggestPrompts(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)

	resp, err := f.suggestions.SuggestPrompts(ctx, &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "abc", Keyword: "ocean", Language: "fi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, resp.Suggestions)
	assert.False(t, resp.Fallback)
	assert.Equal(t, "ocean", f.provider.lastSuggest.Keyword)
	assert.Equal(t, "fi", f.provider.lastSuggest.Language)
	assert.Nil(t, f.provider.lastSuggest.Image)
	assert.Equal(t, 1, f.usageStore.count("user-1", "abc", core.UsageCategorySuggestion))
	assert.Equal(t, 0, f.usageStore.count("user-1", "abc", core.UsageCategoryImage))
}

func TestSuggestionService_FallbackDoesNotCount(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	f.provider.suggestErr = errProviderDown

	resp, err := f.suggestions.SuggestPrompts(ctx, &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "abc"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, core.DefaultPromptSuggestions, resp.Suggestions)
	assert.Equal(t, 0, f.usageStore.count("user-1", "abc", core.UsageCategorySuggestion))
	assert.Empty(t, f.tokenStore.all())

	// 回應成功但沒有內容：計費但不計數
	f.provider.suggestErr = nil
	f.provider.suggestions = nil
	resp, err = f.suggestions.SuggestPrompts(ctx, &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "abc"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, 0, f.usageStore.count("user-1", "abc", core.UsageCategorySuggestion))
	assert.Len(t, f.tokenStore.all(), 1)

	// 回傳的是複本
	resp.Suggestions[0] = "changed"
	assert.Equal(t, "Sunset over mountains", core.DefaultPromptSuggestions[0])
}

func TestSuggestionService_BilledFallbackIsRecorded(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	f.provider.suggestErr = cErr.ExternalResponseFormatError("gemini suggest returned no suggestions")
	f.provider.billedUsage = &provider.TokenCounts{Prompt: 40, Completion: 5, Total: 45}

	resp, err := f.suggestions.SuggestPrompts(context.Background(), &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "abc"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, 0, f.usageStore.count("user-1", "abc", core.UsageCategorySuggestion))

	usages := f.tokenStore.all()
	require.Len(t, usages, 1)
	assert.Equal(t, core.OperationSuggestPrompts, usages[0].OperationType)
	assert.Equal(t, 45, usages[0].TotalTokens)
}

func TestSuggestionService_Denied(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 0, false, core.ImageBackendDefault)

	_, err := f.suggestions.SuggestPrompts(ctx, &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "abc"})
	assert.True(t, cErr.Is(err, cErr.QUOTA_EXCEEDED))

	_, err = f.suggestions.SuggestPrompts(ctx, &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "missing"})
	assert.True(t, cErr.Is(err, cErr.UNAUTHORIZED))
	assert.Equal(t, 0, f.provider.count("suggest"))
}

func TestSuggestionService_RateLimited(t *testing.T) {
	f := newFixture(fixedLimiter{admit: false})
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)

	_, err := f.suggestions.SuggestPrompts(context.Background(), &dto.SuggestPromptsDto{UserGUID: "user-1", AccessCode: "abc"})
	assert.True(t, cErr.Is(err, cErr.RATE_LIMIT_EXCEEDED))
	assert.Equal(t, 0, f.provider.count("suggest"))
}

func seedImage(f *fixture, id string, userGUID string, description string) {
	f.imageStore.images[id] = &model.Image{
		ID:          id,
		UserGUID:    userGUID,
		FileName:    id + ".png",
		Prompt:      "a fox",
		Description: description,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	f.imageStore.order = append(f.imageStore.order, id)
	f.blobStore.blobs[id] = []byte("png-" + id)
}

func TestSuggestionService_SuggestEditsFillsMissingDescription(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	seedImage(f, "img-1", "user-1", "")

	resp, err := f.suggestions.SuggestEdits(ctx, "img-1", &dto.SuggestEditsDto{UserGUID: "user-1", AccessCode: "abc", Keyword: "winter"})
	require.NoError(t, err)
	assert.False(t, resp.Fallback)
	assert.Equal(t, "A red fox in snow", f.provider.lastSuggest.Description)
	assert.Equal(t, "winter", f.provider.lastSuggest.Keyword)
	assert.Equal(t, []byte("png-img-1"), f.provider.lastSuggest.Image)
	assert.Equal(t, "A red fox in snow", f.imageStore.images["img-1"].Description)
	assert.Equal(t, 1, f.usageStore.count("user-1", "abc", core.UsageCategorySuggestion))
}

func TestSuggestionService_SuggestEditsUsesStoredDescription(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	seedImage(f, "img-1", "user-1", "A lighthouse at dusk")

	_, err := f.suggestions.SuggestEdits(context.Background(), "img-1", &dto.SuggestEditsDto{UserGUID: "user-1", AccessCode: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "A lighthouse at dusk", f.provider.lastSuggest.Description)
	assert.Equal(t, 0, f.provider.count("describe"))
}

func TestSuggestionService_SuggestEditsMissingImage(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)

	_, err := f.suggestions.SuggestEdits(context.Background(), "nope", &dto.SuggestEditsDto{UserGUID: "user-1", AccessCode: "abc"})
	assert.True(t, cErr.Is(err, cErr.NOT_FOUND))
}

func TestSuggestionService_SuggestEditsMissingFileFallsBack(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	f.seedCredential("abc", 30, 5, 5, false, core.ImageBackendDefault)
	seedImage(f, "img-1", "user-1", "")
	delete(f.blobStore.blobs, "img-1")

	resp, err := f.suggestions.SuggestEdits(context.Background(), "img-1", &dto.SuggestEditsDto{UserGUID: "user-1", AccessCode: "abc"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, core.DefaultEditSuggestions, resp.Suggestions)
	assert.Equal(t, 0, f.provider.count("suggest"))
}

func TestSuggestionService_DescribeImage(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	seedImage(f, "img-1", "user-1", "A lighthouse at dusk")
	seedImage(f, "img-2", "user-1", "")

	resp, err := f.suggestions.DescribeImage(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, "A lighthouse at dusk", resp.Description)
	assert.Equal(t, 0, f.provider.count("describe"))

	resp, err = f.suggestions.DescribeImage(ctx, "img-2")
	require.NoError(t, err)
	assert.Equal(t, "A red fox in snow", resp.Description)
	assert.Equal(t, "A red fox in snow", f.imageStore.images["img-2"].Description)

	_, err = f.suggestions.DescribeImage(ctx, "missing")
	assert.True(t, cErr.Is(err, cErr.NOT_FOUND))
}
