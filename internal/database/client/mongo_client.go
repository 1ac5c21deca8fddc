package client

import (
	"context"
	"strings"
	"time"

	"imagegate/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoClient 連接 MongoDB
type MongoClient struct {
	client   *mongo.Client
	database string
	logger   *zap.Logger
}

func NewMongoClient(logger *zap.Logger, config *config.Configuration) (*MongoClient, func(), error) {
	mongoClient := &MongoClient{logger: logger, database: config.MongoDB.Database}
	client, err := mongoClient.connectDB(config)
	if err != nil {
		logger.Error("failed to connect to MongoDB", zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to MongoDB", zap.String("database", config.MongoDB.Database))
	mongoClient.client = client

	cleanup := func() {
		logger.Info("closing the MongoDB resources")
		if err := mongoClient.Close(); err != nil {
			logger.Error("failed to close MongoDB client", zap.Error(err))
		}
	}

	return mongoClient, cleanup, nil
}

// NewMongoClientFrom 包裝既有連線（測試用 container）
func NewMongoClientFrom(logger *zap.Logger, client *mongo.Client, database string) *MongoClient {
	return &MongoClient{client: client, database: database, logger: logger}
}

const mongoConnectTimeout = 10 * time.Second

// 啟動時即 ping primary，連不上就讓服務起不來
func (client *MongoClient) connectDB(config *config.Configuration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(buildMongoURI(config.MongoDB.URI, config.MongoDB.Options)).
		SetAppName(config.App.Name).
		SetServerSelectionTimeout(mongoConnectTimeout)
	conn, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx, readpref.Primary()); err != nil {
		_ = conn.Disconnect(context.Background())
		return nil, err
	}
	return conn, nil
}

// URI 已帶 query 時以 & 接上額外參數
func buildMongoURI(baseURI, optionStr string) string {
	if optionStr == "" {
		return baseURI
	}
	if strings.Contains(baseURI, "?") {
		return baseURI + "&" + optionStr
	}
	return baseURI + "?" + optionStr
}

// Close 關閉 MongoDB 連線
func (m *MongoClient) Close() error {
	return m.client.Disconnect(context.Background())
}

// Client 回傳 MongoDB 連線
func (m *MongoClient) Client() *mongo.Client {
	return m.client
}

// Database 回傳設定中的資料庫
func (m *MongoClient) Database() *mongo.Database {
	return m.client.Database(m.database)
}

// Ping readiness 檢查用
func (m *MongoClient) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}
