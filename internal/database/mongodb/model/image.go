package model

import (
	"imagegate/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Image struct {
	ID              string            `json:"id" bson:"_id"`                                              // uuid，同時為檔名
	UserGUID        string            `json:"userGuid" bson:"userGuid"`                                   // 擁有者
	FileName        string            `json:"fileName" bson:"fileName"`                                   // <id>.png
	Prompt          string            `json:"prompt" bson:"prompt"`                                       // 生成（或組合後）的提示詞
	Description     string            `json:"description" bson:"description"`                             // AI 產生的簡短描述
	Backend         core.ImageBackend `json:"backend,omitempty" bson:"backend,omitempty"`                 // 產生此圖的後端
	OriginalImageID string            `json:"originalImageId,omitempty" bson:"originalImageId,omitempty"` // 編輯來源
	CreatedAt       time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt" bson:"updatedAt"`
}

var ImageIndexes = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "userGuid", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("idx_userGuid_createdAt"),
	},
	{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
}
