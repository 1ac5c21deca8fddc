package repository

import (
	"context"
	"time"

	"imagegate/internal/core"
	client "imagegate/internal/database/client"
	"imagegate/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CredentialUsageRepository struct {
	collection *mongo.Collection
}

func NewCredentialUsageRepository(mongoClient *client.MongoClient) *CredentialUsageRepository {
	repository := &CredentialUsageRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionCredentialUsages)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *CredentialUsageRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.CredentialUsageIndexes)
	return nil
}

// GetOrCreate 取得 (userID, code) 用量；不存在時以 0 次建立
func (repository *CredentialUsageRepository) GetOrCreate(
	contextValue context.Context,
	userID string,
	credentialCode string,
) (_ *model.CredentialUsage, returnedError error) {

	nowUTC := time.Now().UTC()
	filter := bson.M{"userID": userID, "credentialCode": credentialCode}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userID":          userID,
			"credentialCode":  credentialCode,
			"imageCount":      0,
			"suggestionCount": 0,
			"createdAt":       nowUTC,
			"updatedAt":       nowUTC,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var usage model.CredentialUsage
	if returnedError = repository.collection.FindOneAndUpdate(contextValue, filter, update, opts).Decode(&usage); returnedError != nil {
		return nil, returnedError
	}
	return &usage, nil
}

// Increment 原子 upsert + $inc，回傳是否新建文件
func (repository *CredentialUsageRepository) Increment(
	contextValue context.Context,
	userID string,
	credentialCode string,
	category core.UsageCategory,
) (matchedCount int64, upsertedCount int64, returnedError error) {

	field := model.UsageCounterField(category)
	otherField := model.UsageCounterField(core.UsageCategoryImage)
	if category == core.UsageCategoryImage {
		otherField = model.UsageCounterField(core.UsageCategorySuggestion)
	}

	filter := bson.M{"userID": userID, "credentialCode": credentialCode}
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$setOnInsert": bson.M{
			otherField:  0,
			"createdAt": time.Now().UTC(),
		},
	}
	result, updateError := repository.collection.UpdateOne(contextValue, filter, withUpdatedAt(update), options.Update().SetUpsert(true))
	if updateError != nil {
		return 0, 0, updateError
	}
	return result.MatchedCount, result.UpsertedCount, nil
}

// ListByCode 列出某通行碼底下所有使用者的用量
func (repository *CredentialUsageRepository) ListByCode(
	contextValue context.Context,
	credentialCode string,
) (_ []*model.CredentialUsage, returnedError error) {

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, findError := repository.collection.Find(contextValue, bson.M{"credentialCode": credentialCode}, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var usages []*model.CredentialUsage
	if returnedError = cursor.All(contextValue, &usages); returnedError != nil {
		return nil, returnedError
	}
	return usages, nil
}

// DeleteByCode 刪除通行碼時連帶刪除其用量
func (repository *CredentialUsageRepository) DeleteByCode(
	contextValue context.Context,
	credentialCode string,
) (_ int64, returnedError error) {

	result, deleteError := repository.collection.DeleteMany(contextValue, bson.M{"credentialCode": credentialCode})
	if deleteError != nil {
		return 0, deleteError
	}
	return result.DeletedCount, nil
}
