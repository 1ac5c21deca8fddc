package service

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	StoreSet,
	NewHealthService,
	NewRateLimiter,
	NewCredentialService,
	NewUsageService,
	NewCostService,
	NewModerationService,
	NewImageService,
	NewSuggestionService,
	NewUserService,
	NewAdminService,
)
