package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`              // 使用者唯一識別碼
	GUID      string             `json:"guid" bson:"guid"`           // 前端保存的匿名識別碼
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"` // 建立時間
}
