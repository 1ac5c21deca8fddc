package model

import (
	"imagegate/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Credential 限時通行碼；code 一律以小寫儲存
type Credential struct {
	ID               primitive.ObjectID `json:"id" bson:"_id"`
	Code             string             `json:"code" bson:"code"`                         // 小寫通行碼
	ValidDays        int                `json:"validDays" bson:"validDays"`               // 有效天數
	ImageQuota       int                `json:"imageQuota" bson:"imageQuota"`             // 生圖 / 改圖次數上限
	SuggestionQuota  int                `json:"suggestionQuota" bson:"suggestionQuota"`   // AI 建議次數上限
	BypassModeration bool               `json:"bypassModeration" bson:"bypassModeration"` // 略過內容審查
	ImageBackend     core.ImageBackend  `json:"imageBackend" bson:"imageBackend"`         // default / alternate
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	ExpiresAt        time.Time          `json:"expiresAt" bson:"expiresAt"` // createdAt + validDays，更新時重算
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// QuotaFor 取得指定類別的配額
func (c *Credential) QuotaFor(category core.UsageCategory) int {
	if category == core.UsageCategorySuggestion {
		return c.SuggestionQuota
	}
	return c.ImageQuota
}

var CredentialIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("uniq_code").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("idx_expiresAt"),
	},
}
