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

type CredentialRepository struct {
	collection *mongo.Collection
}

func NewCredentialRepository(mongoClient *client.MongoClient) *CredentialRepository {
	repository := &CredentialRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionCredentials)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *CredentialRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.CredentialIndexes)
	return nil
}

// Upsert 以 code 為鍵整筆覆寫（不存在則新增），回傳寫入後的文件
func (repository *CredentialRepository) Upsert(
	contextValue context.Context,
	credential *model.Credential,
) (_ *model.Credential, returnedError error) {

	filter := bson.M{"code": credential.Code}
	update := bson.M{
		"$set": bson.M{
			"code":             credential.Code,
			"validDays":        credential.ValidDays,
			"imageQuota":       credential.ImageQuota,
			"suggestionQuota":  credential.SuggestionQuota,
			"bypassModeration": credential.BypassModeration,
			"imageBackend":     credential.ImageBackend,
			"createdAt":        credential.CreatedAt.UTC(),
			"expiresAt":        credential.ExpiresAt.UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved model.Credential
	if returnedError = repository.collection.FindOneAndUpdate(contextValue, filter, withUpdatedAt(update), opts).Decode(&saved); returnedError != nil {
		return nil, returnedError
	}
	return &saved, nil
}

// GetByCode 不論是否過期
func (repository *CredentialRepository) GetByCode(
	contextValue context.Context,
	code string,
) (_ *model.Credential, returnedError error) {

	var credential model.Credential
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"code": code}).Decode(&credential); returnedError != nil {
		return nil, returnedError
	}
	return &credential, nil
}

// GetActiveByCode 只回傳 expiresAt > now 的通行碼
func (repository *CredentialRepository) GetActiveByCode(
	contextValue context.Context,
	code string,
	now time.Time,
) (_ *model.Credential, returnedError error) {

	filter := bson.M{
		"code":      code,
		"expiresAt": bson.M{"$gt": now.UTC()},
	}
	var credential model.Credential
	if returnedError = repository.collection.FindOne(contextValue, filter).Decode(&credential); returnedError != nil {
		return nil, returnedError
	}
	return &credential, nil
}

// List 依建立時間倒序列出全部通行碼
func (repository *CredentialRepository) List(
	contextValue context.Context,
) (_ []*model.Credential, returnedError error) {

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, findError := repository.collection.Find(contextValue, bson.M{}, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var credentials []*model.Credential
	if returnedError = cursor.All(contextValue, &credentials); returnedError != nil {
		return nil, returnedError
	}
	return credentials, nil
}

// UpdateByCode 將呼叫端給的欄位寫入 $set，並回傳更新後文件
func (repository *CredentialRepository) UpdateByCode(
	contextValue context.Context,
	code string,
	setFields bson.M,
) (_ *model.Credential, returnedError error) {

	update := bson.M{"$set": setFields}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Credential
	if returnedError = repository.collection.FindOneAndUpdate(contextValue, bson.M{"code": code}, withUpdatedAt(update), opts).Decode(&updated); returnedError != nil {
		// 沒有符合文件時 driver 回傳 mongo.ErrNoDocuments
		return nil, returnedError
	}
	return &updated, nil
}

// DeleteByCode 刪除單一通行碼；不存在時回傳 mongo.ErrNoDocuments
func (repository *CredentialRepository) DeleteByCode(
	contextValue context.Context,
	code string,
) (returnedError error) {

	result, deleteError := repository.collection.DeleteOne(contextValue, bson.M{"code": code})
	if deleteError != nil {
		return deleteError
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
