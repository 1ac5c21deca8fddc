package model

import (
	"imagegate/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CredentialUsage 每個 (userID, credentialCode) 的已用次數
type CredentialUsage struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	UserID          string             `json:"userID" bson:"userID"`
	CredentialCode  string             `json:"credentialCode" bson:"credentialCode"`
	ImageCount      int                `json:"imageCount" bson:"imageCount"`
	SuggestionCount int                `json:"suggestionCount" bson:"suggestionCount"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CountFor 取得指定類別的已用次數
func (u *CredentialUsage) CountFor(category core.UsageCategory) int {
	if category == core.UsageCategorySuggestion {
		return u.SuggestionCount
	}
	return u.ImageCount
}

// UsageCounterField 類別對應的計數欄位
func UsageCounterField(category core.UsageCategory) string {
	if category == core.UsageCategorySuggestion {
		return "suggestionCount"
	}
	return "imageCount"
}

var CredentialUsageIndexes = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "userID", Value: 1},
			{Key: "credentialCode", Value: 1},
		},
		Options: options.Index().SetName("uniq_userID_credentialCode").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "credentialCode", Value: 1}},
		Options: options.Index().SetName("idx_credentialCode"),
	},
}
