package database

import (
	blobRepo "imagegate/internal/database/blob/repository"
	client "imagegate/internal/database/client"
	fluentdRepo "imagegate/internal/database/fluentd/repository"
	mongoRepo "imagegate/internal/database/mongodb/repository"
	redisRepo "imagegate/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
	blobRepo.ProviderSet,
)
