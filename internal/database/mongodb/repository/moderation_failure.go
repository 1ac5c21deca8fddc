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

type ModerationFailureRepository struct {
	collection *mongo.Collection
}

func NewModerationFailureRepository(mongoClient *client.MongoClient) *ModerationFailureRepository {
	repository := &ModerationFailureRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionModerationFailures)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *ModerationFailureRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.ModerationFailureIndexes)
	return nil
}

// Create 新增一筆審查拒絕紀錄
func (repository *ModerationFailureRepository) Create(
	contextValue context.Context,
	failure *model.ModerationFailure,
) (_ *model.ModerationFailure, returnedError error) {

	if failure.ID.IsZero() {
		failure.ID = primitive.NewObjectID()
	}
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now().UTC()
	}
	if _, returnedError = repository.collection.InsertOne(contextValue, failure); returnedError != nil {
		return nil, returnedError
	}
	return failure, nil
}

// ListRecent 最新在前；limit <= 0 代表不限
func (repository *ModerationFailureRepository) ListRecent(
	contextValue context.Context,
	limit int64,
) (_ []*model.ModerationFailure, returnedError error) {

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, findError := repository.collection.Find(contextValue, bson.M{}, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var failures []*model.ModerationFailure
	if returnedError = cursor.All(contextValue, &failures); returnedError != nil {
		return nil, returnedError
	}
	return failures, nil
}
