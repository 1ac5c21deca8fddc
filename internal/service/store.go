package service

import (
	"context"
	"time"

	"imagegate/internal/core"
	blobRepository "imagegate/internal/database/blob/repository"
	fluentdModel "imagegate/internal/database/fluentd/model"
	fluentdRepository "imagegate/internal/database/fluentd/repository"
	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/database/mongodb/repository"
	redisRepository "imagegate/internal/database/redis/repository"
	"imagegate/internal/service/provider"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
)

// service 只依賴以下介面，實作由 repository 提供，測試則以記憶體版本替換

type CredentialStore interface {
	Upsert(ctx context.Context, credential *model.Credential) (*model.Credential, error)
	GetByCode(ctx context.Context, code string) (*model.Credential, error)
	GetActiveByCode(ctx context.Context, code string, now time.Time) (*model.Credential, error)
	List(ctx context.Context) ([]*model.Credential, error)
	UpdateByCode(ctx context.Context, code string, setFields bson.M) (*model.Credential, error)
	DeleteByCode(ctx context.Context, code string) error
}

type CredentialUsageStore interface {
	GetOrCreate(ctx context.Context, userID string, credentialCode string) (*model.CredentialUsage, error)
	Increment(ctx context.Context, userID string, credentialCode string, category core.UsageCategory) (int64, int64, error)
	ListByCode(ctx context.Context, credentialCode string) ([]*model.CredentialUsage, error)
	DeleteByCode(ctx context.Context, credentialCode string) (int64, error)
}

type ModerationFailureStore interface {
	Create(ctx context.Context, failure *model.ModerationFailure) (*model.ModerationFailure, error)
	ListRecent(ctx context.Context, limit int64) ([]*model.ModerationFailure, error)
}

type TokenUsageStore interface {
	Create(ctx context.Context, usage *model.TokenUsage) (*model.TokenUsage, error)
	Aggregate(ctx context.Context, groupField string) ([]*model.TokenUsageAggregate, error)
}

type SettingStore interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

type ImageStore interface {
	Create(ctx context.Context, image *model.Image) (*model.Image, error)
	GetByID(ctx context.Context, imageID string) (*model.Image, error)
	GetByIDAndUser(ctx context.Context, imageID string, userGUID string) (*model.Image, error)
	ListByUser(ctx context.Context, userGUID string) ([]*model.Image, error)
	ListAll(ctx context.Context) ([]*model.Image, error)
	UpdateDescription(ctx context.Context, imageID string, description string) error
	DeleteByID(ctx context.Context, imageID string) error
	Count(ctx context.Context, since time.Time) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByGUID(ctx context.Context, guid string) (*model.User, error)
	Count(ctx context.Context, since time.Time) (int64, error)
}

// BlobStore 圖片檔案本體
type BlobStore interface {
	Save(ctx context.Context, imageID string, data []byte) error
	Load(ctx context.Context, imageID string) ([]byte, error)
	Delete(ctx context.Context, imageID string) error
}

// UsageLogger 將成本紀錄同步送往 fluentd
type UsageLogger interface {
	LogUsage(ctx context.Context, usage fluentdModel.ProviderUsageLog) error
}

// SlidingWindowStore 跨副本共用的滑動視窗
type SlidingWindowStore interface {
	Admit(ctx context.Context, now time.Time, window time.Duration, ceiling int) (bool, int, error)
}

var StoreSet = wire.NewSet(
	wire.Bind(new(CredentialStore), new(*repository.CredentialRepository)),
	wire.Bind(new(CredentialUsageStore), new(*repository.CredentialUsageRepository)),
	wire.Bind(new(ModerationFailureStore), new(*repository.ModerationFailureRepository)),
	wire.Bind(new(TokenUsageStore), new(*repository.TokenUsageRepository)),
	wire.Bind(new(SettingStore), new(*repository.SettingRepository)),
	wire.Bind(new(ImageStore), new(*repository.ImageRepository)),
	wire.Bind(new(UserStore), new(*repository.UserRepository)),
	wire.Bind(new(BlobStore), new(*blobRepository.ImageFileRepository)),
	wire.Bind(new(UsageLogger), new(*fluentdRepository.LogRepository)),
	wire.Bind(new(SlidingWindowStore), new(*redisRepository.SlidingWindowRepository)),
	wire.Bind(new(provider.Provider), new(*provider.Client)),
)
