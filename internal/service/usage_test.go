package service

import (
	"context"
	"testing"

	"imagegate/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageService_IncrementCountsEachCall(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()
	f.seedCredential("abc", 30, 10, 10, false, core.ImageBackendDefault)

	for i := 0; i < 4; i++ {
		require.NoError(t, f.usage.Increment(ctx, "ABC", "user-1", core.UsageCategoryImage))
	}
	require.NoError(t, f.usage.Increment(ctx, "abc", "user-1", core.UsageCategorySuggestion))

	assert.Equal(t, 4, f.usageStore.count("user-1", "abc", core.UsageCategoryImage))
	assert.Equal(t, 1, f.usageStore.count("user-1", "abc", core.UsageCategorySuggestion))

	usages, err := f.usage.ListByCode(ctx, "Abc")
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, "user-1", usages[0].UserID)
	assert.Equal(t, 4, usages[0].ImageCount)
	assert.Equal(t, 1, usages[0].SuggestionCount)
}

func TestUsageService_PrivilegedCodeIsNotRecorded(t *testing.T) {
	f := newFixture(fixedLimiter{admit: true})
	ctx := context.Background()

	require.NoError(t, f.usage.Increment(ctx, testAdminSecret, "user-1", core.UsageCategoryImage))
	assert.Empty(t, f.usageStore.usages)
}
