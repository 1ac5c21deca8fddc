package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Setting 可由管理端即時修改的 key/value 設定
type Setting struct {
	Key       string    `json:"key" bson:"key"`
	Value     string    `json:"value" bson:"value"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

var SettingIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetName("uniq_key").SetUnique(true),
	},
}
