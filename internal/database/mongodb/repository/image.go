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

type ImageRepository struct {
	collection *mongo.Collection
}

func NewImageRepository(mongoClient *client.MongoClient) *ImageRepository {
	repository := &ImageRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionImages)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *ImageRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.ImageIndexes)
	return nil
}

// Create：_id 由上游以 uuid 指定
func (repository *ImageRepository) Create(
	contextValue context.Context,
	image *model.Image,
) (_ *model.Image, returnedError error) {

	nowUTC := time.Now().UTC()
	image.CreatedAt = nowUTC
	image.UpdatedAt = nowUTC
	if _, returnedError = repository.collection.InsertOne(contextValue, image); returnedError != nil {
		return nil, returnedError
	}
	return image, nil
}

func (repository *ImageRepository) GetByID(
	contextValue context.Context,
	imageID string,
) (_ *model.Image, returnedError error) {

	var image model.Image
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": imageID}).Decode(&image); returnedError != nil {
		return nil, returnedError
	}
	return &image, nil
}

// GetByIDAndUser 只回傳屬於該使用者的圖片
func (repository *ImageRepository) GetByIDAndUser(
	contextValue context.Context,
	imageID string,
	userGUID string,
) (_ *model.Image, returnedError error) {

	var image model.Image
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": imageID, "userGuid": userGUID}).Decode(&image); returnedError != nil {
		return nil, returnedError
	}
	return &image, nil
}

// ListByUser 使用者圖庫，最新在前
func (repository *ImageRepository) ListByUser(
	contextValue context.Context,
	userGUID string,
) (_ []*model.Image, returnedError error) {
	return repository.find(contextValue, bson.M{"userGuid": userGUID})
}

// ListAll 管理端全量列舉，最新在前
func (repository *ImageRepository) ListAll(
	contextValue context.Context,
) (_ []*model.Image, returnedError error) {
	return repository.find(contextValue, bson.M{})
}

func (repository *ImageRepository) find(contextValue context.Context, filter bson.M) (_ []*model.Image, returnedError error) {
	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	images := []*model.Image{}
	if returnedError = cursor.All(contextValue, &images); returnedError != nil {
		return nil, returnedError
	}
	return images, nil
}

// UpdateDescription 補寫描述
func (repository *ImageRepository) UpdateDescription(
	contextValue context.Context,
	imageID string,
	description string,
) (returnedError error) {

	update := bson.M{"$set": bson.M{"description": description}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": imageID}, withUpdatedAt(update))
	if updateError != nil {
		return updateError
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (repository *ImageRepository) DeleteByID(
	contextValue context.Context,
	imageID string,
) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": imageID})
	return returnedError
}

// Count 全部圖片數；since 非零時只算之後建立的
func (repository *ImageRepository) Count(
	contextValue context.Context,
	since time.Time,
) (_ int64, returnedError error) {
	return repository.collection.CountDocuments(contextValue, createdSince(since))
}
