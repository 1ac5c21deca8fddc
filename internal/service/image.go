package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"imagegate/internal/core"
	blobRepository "imagegate/internal/database/blob/repository"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	cErr "imagegate/internal/pkg/error"
	"imagegate/internal/service/provider"
	"imagegate/internal/telemetry"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ImageService struct {
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	logger      *zap.Logger
	limiter     RateLimiter
	provider    provider.Provider
	credentials *CredentialService
	usage       *UsageService
	moderation  *ModerationService
	cost        *CostService
	imageStore  ImageStore
	userStore   UserStore
	blobStore   BlobStore
}

func NewImageService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	limiter RateLimiter,
	aiProvider provider.Provider,
	credentials *CredentialService,
	usage *UsageService,
	moderation *ModerationService,
	cost *CostService,
	imageStore ImageStore,
	userStore UserStore,
	blobStore BlobStore,
) *ImageService {
	return &ImageService{
		trace:       trace,
		metric:      metric,
		logger:      logger,
		limiter:     limiter,
		provider:    aiProvider,
		credentials: credentials,
		usage:       usage,
		moderation:  moderation,
		cost:        cost,
		imageStore:  imageStore,
		userStore:   userStore,
		blobStore:   blobStore,
	}
}

// Generate 驗證 → 審查 → 限流 → 生圖 → 存檔 → 描述 → 寫入 → 計數
func (s *ImageService) Generate(ctx context.Context, req *dto.GenerateImageDto) (_ *dto.ImageResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() {
		end(returnedError)
		s.metric.ObserveOperation(string(core.OperationGenerateImage), returnedError, errorReason(returnedError))
	}()

	meta := core.TraceImageOpMeta{Op: string(core.OperationGenerateImage), UserID: req.UserGUID}
	defer func() { s.trace.ApplyTraceAttributes(span, meta) }()

	if err := s.ensureUser(ctx, req.UserGUID); err != nil {
		return nil, err
	}
	validation, err := s.credentials.Validate(ctx, req.AccessCode, req.UserGUID, core.UsageCategoryImage)
	if err != nil {
		return nil, err
	}
	if err := validation.Err(); err != nil {
		return nil, err
	}
	meta.Backend, meta.Bypass = string(validation.Backend), validation.BypassModeration

	if !validation.BypassModeration {
		if err := s.moderation.Review(ctx, req.Prompt, core.ModerationKindGenerate, req.AccessCode); err != nil {
			meta.Status = "moderation_rejected"
			return nil, err
		}
	}

	if !s.limiter.Admit(ctx) {
		meta.Status = "rate_limited"
		return nil, cErr.RateLimitExceeded("AI provider rate limit reached, please retry later")
	}
	result, err := s.provider.GenerateImage(ctx, req.Prompt, validation.Backend)
	if result != nil {
		s.cost.Record(ctx, core.OperationGenerateImage, result.Model, result.Usage, result.Images, req.AccessCode)
	}
	if err != nil {
		meta.Status = "provider_failed"
		return nil, err
	}

	image, err := s.persist(ctx, req.UserGUID, req.AccessCode, result.Data, req.Prompt, validation.Backend, "")
	if err != nil {
		meta.Status = "persist_failed"
		return nil, err
	}
	meta.ImageID, meta.Description, meta.Status = image.ID, image.Description, "created"

	s.incrementUsage(ctx, req.AccessCode, req.UserGUID, core.UsageCategoryImage)
	return modelToImageResponseDto(image), nil
}

// Edit 以既有圖片為底產生新圖；原圖保持不變
func (s *ImageService) Edit(ctx context.Context, req *dto.EditImageDto) (_ *dto.ImageResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() {
		end(returnedError)
		s.metric.ObserveOperation(string(core.OperationEditImage), returnedError, errorReason(returnedError))
	}()

	meta := core.TraceImageOpMeta{Op: string(core.OperationEditImage), UserID: req.UserGUID, SourceID: req.ImageID}
	defer func() { s.trace.ApplyTraceAttributes(span, meta) }()

	validation, err := s.credentials.Validate(ctx, req.AccessCode, req.UserGUID, core.UsageCategoryImage)
	if err != nil {
		return nil, err
	}
	if err := validation.Err(); err != nil {
		return nil, err
	}
	meta.Bypass = validation.BypassModeration

	original, err := s.imageStore.GetByIDAndUser(ctx, req.ImageID, req.UserGUID)
	if err != nil {
		return nil, translateImageLookupError(err, req.ImageID)
	}

	if !validation.BypassModeration {
		if err := s.moderation.Review(ctx, req.EditPrompt, core.ModerationKindEdit, req.AccessCode); err != nil {
			meta.Status = "moderation_rejected"
			return nil, err
		}
	}

	source, err := s.blobStore.Load(ctx, original.ID)
	if err != nil {
		if errors.Is(err, blobRepository.ErrBlobNotFound) {
			return nil, cErr.NotFound(fmt.Sprintf("image file %s not found", original.ID))
		}
		return nil, cErr.StorageError("failed to read source image")
	}

	if !s.limiter.Admit(ctx) {
		meta.Status = "rate_limited"
		return nil, cErr.RateLimitExceeded("AI provider rate limit reached, please retry later")
	}
	result, err := s.provider.EditImage(ctx, source, req.EditPrompt)
	if result != nil {
		s.cost.Record(ctx, core.OperationEditImage, result.Model, result.Usage, result.Images, req.AccessCode)
	}
	if err != nil {
		meta.Status = "provider_failed"
		return nil, err
	}

	combinedPrompt := fmt.Sprintf("'%s' + '%s'", original.Prompt, req.EditPrompt)
	image, err := s.persist(ctx, req.UserGUID, req.AccessCode, result.Data, combinedPrompt, core.ImageBackendDefault, original.ID)
	if err != nil {
		meta.Status = "persist_failed"
		return nil, err
	}
	meta.ImageID, meta.Description, meta.Status = image.ID, image.Description, "created"

	s.incrementUsage(ctx, req.AccessCode, req.UserGUID, core.UsageCategoryImage)
	return modelToImageResponseDto(image), nil
}

// persist 寫檔、描述、寫入 metadata；描述失敗時使用預設文字
func (s *ImageService) persist(
	ctx context.Context,
	userGUID string,
	accessCode string,
	data []byte,
	prompt string,
	backend core.ImageBackend,
	originalID string,
) (*model.Image, error) {
	imageID := uuid.NewString()
	if err := s.blobStore.Save(ctx, imageID, data); err != nil {
		return nil, cErr.StorageError("failed to store image")
	}

	description := s.Describe(ctx, data, accessCode)
	image, err := s.imageStore.Create(ctx, &model.Image{
		ID:              imageID,
		UserGUID:        userGUID,
		FileName:        blobRepository.FileName(imageID),
		Prompt:          prompt,
		Description:     description,
		Backend:         backend,
		OriginalImageID: originalID,
	})
	if err != nil {
		return nil, cErr.DatabaseError("database Create image error")
	}
	return image, nil
}

// Describe 產生簡短描述；限流或供應商失敗時回傳預設描述
func (s *ImageService) Describe(ctx context.Context, data []byte, accessCode string) string {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !s.limiter.Admit(ctx) {
		return core.DefaultImageDescription
	}
	result, err := s.provider.Describe(ctx, data)
	if result != nil {
		s.cost.Record(ctx, core.OperationDescribeImage, result.Model, result.Usage, 0, accessCode)
	}
	if err != nil {
		s.logger.Warn("describe image failed, using fallback description",
			append(telemetry.SpanFields(span), zap.Error(err))...)
		return core.DefaultImageDescription
	}

	description := strings.TrimSpace(result.Text)
	if description == "" {
		return core.DefaultImageDescription
	}
	return description
}

// 成品已寫入後才計數；計數失敗只記 log
func (s *ImageService) incrementUsage(ctx context.Context, code string, userGUID string, category core.UsageCategory) {
	if err := s.usage.Increment(ctx, code, userGUID, category); err != nil {
		s.logger.Warn("failed to increment usage",
			zap.String("userGuid", userGUID), zap.String("category", string(category)), zap.Error(err))
	}
}

func (s *ImageService) ensureUser(ctx context.Context, userGUID string) error {
	if _, err := s.userStore.GetByGUID(ctx, userGUID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("user not found")
		}
		return cErr.DatabaseError("database GetByGUID user error")
	}
	return nil
}

// Gallery 使用者的圖片，新到舊
func (s *ImageService) Gallery(ctx context.Context, userGUID string) (*dto.ImageListResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	images, err := s.imageStore.ListByUser(ctx, userGUID)
	if err != nil {
		return nil, cErr.DatabaseError("database ListByUser image error")
	}
	return modelsToImageListResponseDto(images), nil
}

// ListAll 管理端檢視全部圖片
func (s *ImageService) ListAll(ctx context.Context) (*dto.ImageListResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	images, err := s.imageStore.ListAll(ctx)
	if err != nil {
		return nil, cErr.DatabaseError("database ListAll image error")
	}
	return modelsToImageListResponseDto(images), nil
}

func (s *ImageService) Get(ctx context.Context, imageID string) (*dto.ImageResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	image, err := s.imageStore.GetByID(ctx, imageID)
	if err != nil {
		return nil, translateImageLookupError(err, imageID)
	}
	return modelToImageResponseDto(image), nil
}

// File 回傳 PNG 內容
func (s *ImageService) File(ctx context.Context, imageID string) ([]byte, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	image, err := s.imageStore.GetByID(ctx, imageID)
	if err != nil {
		return nil, translateImageLookupError(err, imageID)
	}
	data, err := s.blobStore.Load(ctx, image.ID)
	if err != nil {
		if errors.Is(err, blobRepository.ErrBlobNotFound) {
			return nil, cErr.NotFound(fmt.Sprintf("image file %s not found", imageID))
		}
		return nil, cErr.StorageError("failed to read image")
	}
	return data, nil
}

// Delete 只允許擁有者刪除；檔案與 metadata 一併移除
func (s *ImageService) Delete(ctx context.Context, imageID string, userGUID string) error {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	image, err := s.imageStore.GetByIDAndUser(ctx, imageID, userGUID)
	if err != nil {
		return translateImageLookupError(err, imageID)
	}
	if err := s.blobStore.Delete(ctx, image.ID); err != nil {
		s.logger.Warn("failed to delete image file", append(telemetry.SpanFields(span), zap.String("imageId", image.ID), zap.Error(err))...)
		return cErr.StorageError("failed to delete image file")
	}
	if err := s.imageStore.DeleteByID(ctx, image.ID); err != nil {
		return cErr.DatabaseError("database DeleteByID image error")
	}
	s.trace.ApplyTraceAttributes(span, core.TraceImageOpMeta{Op: "delete_image", UserID: userGUID, ImageID: image.ID, Status: "deleted"})
	return nil
}

func translateImageLookupError(err error, imageID string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cErr.NotFound(fmt.Sprintf("image %s not found", imageID))
	}
	return cErr.DatabaseError("database image lookup error")
}

// errorReason 作為失敗指標的 reason label
func errorReason(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*cErr.Error); ok {
		return fmt.Sprintf("%d", appErr.ErrorCode())
	}
	return "internal"
}

// ImageFileURL 圖片檔案的相對網址
func ImageFileURL(imageID string) string {
	return "/api/images/" + imageID + "/file"
}

func modelToImageResponseDto(m *model.Image) *dto.ImageResponseDto {
	return &dto.ImageResponseDto{
		ID:              m.ID,
		UserGUID:        m.UserGUID,
		FileName:        m.FileName,
		URL:             ImageFileURL(m.ID),
		Prompt:          m.Prompt,
		Description:     m.Description,
		Backend:         m.Backend,
		OriginalImageID: m.OriginalImageID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func modelsToImageListResponseDto(images []*model.Image) *dto.ImageListResponseDto {
	resp := &dto.ImageListResponseDto{Images: make([]*dto.ImageResponseDto, len(images))}
	for i, m := range images {
		resp.Images[i] = modelToImageResponseDto(m)
	}
	return resp
}
