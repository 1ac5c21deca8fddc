package service

import (
	"context"
	"strings"

	"imagegate/internal/core"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/service/provider"
	"imagegate/internal/telemetry"

	"go.uber.org/zap"
)

type SuggestionService struct {
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	logger      *zap.Logger
	limiter     RateLimiter
	provider    provider.Provider
	credentials *CredentialService
	usage       *UsageService
	cost        *CostService
	images      *ImageService
	imageStore  ImageStore
	blobStore   BlobStore
}

func NewSuggestionService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	limiter RateLimiter,
	aiProvider provider.Provider,
	credentials *CredentialService,
	usage *UsageService,
	cost *CostService,
	images *ImageService,
	imageStore ImageStore,
	blobStore BlobStore,
) *SuggestionService {
	return &SuggestionService{
		trace:       trace,
		metric:      metric,
		logger:      logger,
		limiter:     limiter,
		provider:    aiProvider,
		credentials: credentials,
		usage:       usage,
		cost:        cost,
		images:      images,
		imageStore:  imageStore,
		blobStore:   blobStore,
	}
}

// SuggestPrompts 產生提示詞建議；供應商失敗時回傳預設建議且不計數
func (s *SuggestionService) SuggestPrompts(ctx context.Context, req *dto.SuggestPromptsDto) (_ *dto.SuggestionsResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() {
		end(returnedError)
		s.metric.ObserveOperation(string(core.OperationSuggestPrompts), returnedError, errorReason(returnedError))
	}()

	if err := s.authorize(ctx, req.AccessCode, req.UserGUID); err != nil {
		return nil, err
	}

	return s.suggest(ctx, core.OperationSuggestPrompts, provider.SuggestParams{
		Keyword:  req.Keyword,
		Language: req.Language,
	}, req.AccessCode, req.UserGUID, core.DefaultPromptSuggestions)
}

// SuggestEdits 依圖片與描述產生編輯建議；沒有描述時先補上並寫回
func (s *SuggestionService) SuggestEdits(ctx context.Context, imageID string, req *dto.SuggestEditsDto) (_ *dto.SuggestionsResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() {
		end(returnedError)
		s.metric.ObserveOperation(string(core.OperationSuggestEdits), returnedError, errorReason(returnedError))
	}()

	if err := s.authorize(ctx, req.AccessCode, req.UserGUID); err != nil {
		return nil, err
	}

	image, err := s.imageStore.GetByID(ctx, imageID)
	if err != nil {
		return nil, translateImageLookupError(err, imageID)
	}
	data, err := s.blobStore.Load(ctx, image.ID)
	if err != nil {
		s.logger.Warn("image file unavailable for edit suggestions",
			append(telemetry.SpanFields(span), zap.String("imageId", image.ID), zap.Error(err))...)
		return &dto.SuggestionsResponseDto{Suggestions: fallbackSuggestions(core.DefaultEditSuggestions), Fallback: true}, nil
	}

	description := strings.TrimSpace(image.Description)
	if description == "" {
		description = s.images.Describe(ctx, data, req.AccessCode)
		if err := s.imageStore.UpdateDescription(ctx, image.ID, description); err != nil {
			s.logger.Warn("failed to store image description", append(telemetry.SpanFields(span), zap.Error(err))...)
		}
	}

	return s.suggest(ctx, core.OperationSuggestEdits, provider.SuggestParams{
		Image:       data,
		Description: description,
		Keyword:     req.Keyword,
		Language:    req.Language,
	}, req.AccessCode, req.UserGUID, core.DefaultEditSuggestions)
}

// DescribeImage 回傳已儲存的描述；尚未有描述時即時產生並寫回
func (s *SuggestionService) DescribeImage(ctx context.Context, imageID string) (*dto.DescriptionResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	image, err := s.imageStore.GetByID(ctx, imageID)
	if err != nil {
		return nil, translateImageLookupError(err, imageID)
	}
	if strings.TrimSpace(image.Description) != "" {
		return &dto.DescriptionResponseDto{Description: image.Description}, nil
	}

	data, err := s.blobStore.Load(ctx, image.ID)
	if err != nil {
		return &dto.DescriptionResponseDto{Description: core.DefaultImageDescription}, nil
	}
	description := s.images.Describe(ctx, data, "")
	if err := s.imageStore.UpdateDescription(ctx, image.ID, description); err != nil {
		s.logger.Warn("failed to store image description", append(telemetry.SpanFields(span), zap.Error(err))...)
	}
	return &dto.DescriptionResponseDto{Description: description}, nil
}

func (s *SuggestionService) authorize(ctx context.Context, code string, userGUID string) error {
	validation, err := s.credentials.Validate(ctx, code, userGUID, core.UsageCategorySuggestion)
	if err != nil {
		return err
	}
	return validation.Err()
}

func (s *SuggestionService) suggest(
	ctx context.Context,
	operation core.OperationType,
	params provider.SuggestParams,
	code string,
	userGUID string,
	fallback []string,
) (*dto.SuggestionsResponseDto, error) {
	if !s.limiter.Admit(ctx) {
		return nil, cErr.RateLimitExceeded("AI provider rate limit reached, please retry later")
	}

	result, err := s.provider.Suggest(ctx, params)
	if result != nil {
		s.cost.Record(ctx, operation, result.Model, result.Usage, 0, code)
	}
	if err != nil {
		s.logger.Warn("suggestion call failed, returning defaults",
			zap.String("operation", string(operation)), zap.Error(err))
		return &dto.SuggestionsResponseDto{Suggestions: fallbackSuggestions(fallback), Fallback: true}, nil
	}

	if len(result.Suggestions) == 0 {
		return &dto.SuggestionsResponseDto{Suggestions: fallbackSuggestions(fallback), Fallback: true}, nil
	}
	if err := s.usage.Increment(ctx, code, userGUID, core.UsageCategorySuggestion); err != nil {
		s.logger.Warn("failed to increment usage", zap.String("userGuid", userGUID), zap.Error(err))
	}
	return &dto.SuggestionsResponseDto{Suggestions: result.Suggestions}, nil
}

func fallbackSuggestions(defaults []string) []string {
	return append([]string(nil), defaults...)
}
