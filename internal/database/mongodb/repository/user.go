package repository

import (
	"context"
	"time"

	"imagegate/internal/core"
	client "imagegate/internal/database/client"
	"imagegate/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(mongoClient *client.MongoClient) *UserRepository {
	repository := &UserRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionUsers)),
	}
	// 啟動時建立常用索引（冪等、存在即跳過）
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *UserRepository) ensureIndexes(contextValue context.Context) error {
	ctx := contextValue

	indexModels := []mongo.IndexModel{
		{ // 以 guid 查詢使用者
			Keys:    bson.D{{Key: "guid", Value: 1}},
			Options: options.Index().SetName("uniq_guid").SetUnique(true),
		},
		{ // 統計近期新增
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_createdAt_desc"),
		},
	}
	_, _ = repository.collection.Indexes().CreateMany(ctx, indexModels)
	return nil
}

// Create：單文件插入
func (repository *UserRepository) Create(
	contextValue context.Context,
	user *model.User,
) (_ *model.User, returnedError error) {

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now().UTC()

	if _, returnedError = repository.collection.InsertOne(contextValue, user); returnedError != nil {
		return nil, returnedError
	}
	return user, nil
}

// GetByGUID：單文件讀取
func (repository *UserRepository) GetByGUID(
	contextValue context.Context,
	guid string,
) (_ *model.User, returnedError error) {

	var user model.User
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"guid": guid}).Decode(&user); returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

// Count 全部使用者數；since 非零時只算之後建立的
func (repository *UserRepository) Count(
	contextValue context.Context,
	since time.Time,
) (_ int64, returnedError error) {
	return repository.collection.CountDocuments(contextValue, createdSince(since))
}
