package model

import (
	"imagegate/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModerationFailure 審查拒絕紀錄（只新增，不修改）
type ModerationFailure struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id"`
	ContentText     string              `json:"contentText" bson:"contentText"`
	RejectionReason string              `json:"rejectionReason" bson:"rejectionReason"`
	OperationKind   core.ModerationKind `json:"operationKind" bson:"operationKind"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}

var ModerationFailureIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
}
