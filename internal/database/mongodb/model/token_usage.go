package model

import (
	"imagegate/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenUsage 單次供應商呼叫的 token 與成本紀錄
type TokenUsage struct {
	ID               primitive.ObjectID `json:"id" bson:"_id"`
	OperationType    core.OperationType `json:"operationType" bson:"operationType"`
	ModelName        string             `json:"modelName" bson:"modelName"`
	PromptTokens     int                `json:"promptTokens" bson:"promptTokens"`
	CompletionTokens int                `json:"completionTokens" bson:"completionTokens"`
	ThinkingTokens   int                `json:"thinkingTokens" bson:"thinkingTokens"`
	TotalTokens      int                `json:"totalTokens" bson:"totalTokens"`
	ImagesGenerated  int                `json:"imagesGenerated" bson:"imagesGenerated"`
	Cost             float64            `json:"cost" bson:"cost"`
	CredentialCode   string             `json:"credentialCode,omitempty" bson:"credentialCode,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

// TokenUsageAggregate 分組加總結果；Group 為空字串代表總計
type TokenUsageAggregate struct {
	Group            string  `json:"group" bson:"_id"`
	PromptTokens     int64   `json:"promptTokens" bson:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens" bson:"completionTokens"`
	ThinkingTokens   int64   `json:"thinkingTokens" bson:"thinkingTokens"`
	TotalTokens      int64   `json:"totalTokens" bson:"totalTokens"`
	ImagesGenerated  int64   `json:"imagesGenerated" bson:"imagesGenerated"`
	Cost             float64 `json:"cost" bson:"cost"`
	RequestCount     int64   `json:"requestCount" bson:"requestCount"`
}

var TokenUsageIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
	{
		Keys:    bson.D{{Key: "operationType", Value: 1}},
		Options: options.Index().SetName("idx_operationType"),
	},
	{
		Keys:    bson.D{{Key: "credentialCode", Value: 1}},
		Options: options.Index().SetName("idx_credentialCode"),
	},
	{
		Keys:    bson.D{{Key: "modelName", Value: 1}},
		Options: options.Index().SetName("idx_modelName"),
	},
}
