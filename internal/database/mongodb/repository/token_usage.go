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

type TokenUsageRepository struct {
	collection *mongo.Collection
}

func NewTokenUsageRepository(mongoClient *client.MongoClient) *TokenUsageRepository {
	repository := &TokenUsageRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionTokenUsages)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *TokenUsageRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.TokenUsageIndexes)
	return nil
}

// Create 新增一筆 token 使用紀錄
func (repository *TokenUsageRepository) Create(
	contextValue context.Context,
	usage *model.TokenUsage,
) (_ *model.TokenUsage, returnedError error) {

	if usage.ID.IsZero() {
		usage.ID = primitive.NewObjectID()
	}
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now().UTC()
	}
	if _, returnedError = repository.collection.InsertOne(contextValue, usage); returnedError != nil {
		return nil, returnedError
	}
	return usage, nil
}

// Aggregate 依欄位分組加總；groupField 為空字串時回傳單筆總計。
// 依 credentialCode 分組時排除沒有通行碼的紀錄。
func (repository *TokenUsageRepository) Aggregate(
	contextValue context.Context,
	groupField string,
) (_ []*model.TokenUsageAggregate, returnedError error) {

	var groupKey any
	if groupField != "" {
		groupKey = "$" + groupField
	}

	pipeline := mongo.Pipeline{}
	if groupField == "credentialCode" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"credentialCode": bson.M{"$nin": bson.A{nil, ""}},
		}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: groupKey},
			{Key: "promptTokens", Value: bson.M{"$sum": "$promptTokens"}},
			{Key: "completionTokens", Value: bson.M{"$sum": "$completionTokens"}},
			{Key: "thinkingTokens", Value: bson.M{"$sum": "$thinkingTokens"}},
			{Key: "totalTokens", Value: bson.M{"$sum": "$totalTokens"}},
			{Key: "imagesGenerated", Value: bson.M{"$sum": "$imagesGenerated"}},
			{Key: "cost", Value: bson.M{"$sum": "$cost"}},
			{Key: "requestCount", Value: bson.M{"$sum": 1}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "cost", Value: -1}}}},
	)

	cursor, aggregateError := repository.collection.Aggregate(contextValue, pipeline, options.Aggregate())
	if aggregateError != nil {
		return nil, aggregateError
	}
	defer cursor.Close(contextValue)

	var results []*model.TokenUsageAggregate
	if returnedError = cursor.All(contextValue, &results); returnedError != nil {
		return nil, returnedError
	}
	return results, nil
}
