package core

// ─── Database Types ────────────────────────────────────────────────────────────

type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────

// MongoDB collections
const (
	MongoCollectionUsers              MongoCollection = "users"
	MongoCollectionImages             MongoCollection = "images"
	MongoCollectionCredentials        MongoCollection = "credentials"
	MongoCollectionCredentialUsages   MongoCollection = "credential_usages"
	MongoCollectionModerationFailures MongoCollection = "moderation_failures"
	MongoCollectionTokenUsages        MongoCollection = "token_usages"
	MongoCollectionSettings           MongoCollection = "settings"
)

// settings collection 的 key
const (
	SettingModerationGuidelines = "moderation_guidelines"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyProviderWindow RedisKey = "provider_rate_window" // 全域滑動視窗，前綴由 REDIS__KEY_PREFIX 決定
)

const (
	FluentdRequest  FluentdSubTag = "request_log"
	FluentdResponse FluentdSubTag = "response_log"
	FluentUsage     FluentdSubTag = "imagegate_usage_log"
)
