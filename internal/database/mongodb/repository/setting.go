package repository

import (
	"context"

	"imagegate/internal/core"
	client "imagegate/internal/database/client"
	"imagegate/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingRepository struct {
	collection *mongo.Collection
}

func NewSettingRepository(mongoClient *client.MongoClient) *SettingRepository {
	repository := &SettingRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionSettings)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *SettingRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.SettingIndexes)
	return nil
}

// Get 讀取設定值；不存在時回傳 mongo.ErrNoDocuments
func (repository *SettingRepository) Get(
	contextValue context.Context,
	key string,
) (_ *model.Setting, returnedError error) {

	var setting model.Setting
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"key": key}).Decode(&setting); returnedError != nil {
		return nil, returnedError
	}
	return &setting, nil
}

// Set 寫入設定值（upsert）
func (repository *SettingRepository) Set(
	contextValue context.Context,
	key string,
	value string,
) (returnedError error) {

	update := bson.M{"$set": bson.M{"key": key, "value": value}}
	_, returnedError = repository.collection.UpdateOne(contextValue, bson.M{"key": key}, withUpdatedAt(update), options.Update().SetUpsert(true))
	return returnedError
}

// Delete 移除設定值（回到內建預設）
func (repository *SettingRepository) Delete(
	contextValue context.Context,
	key string,
) (returnedError error) {

	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"key": key})
	return returnedError
}
