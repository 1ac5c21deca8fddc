package core

// ImageBackend 通行碼可選的生圖後端
type ImageBackend string

const (
	ImageBackendDefault   ImageBackend = "default"   // Gemini image model
	ImageBackendAlternate ImageBackend = "alternate" // OpenAI images API
)

func (b ImageBackend) Valid() bool {
	return b == ImageBackendDefault || b == ImageBackendAlternate
}

// UsageCategory 會消耗配額的操作類別
type UsageCategory string

const (
	UsageCategoryImage      UsageCategory = "image"
	UsageCategorySuggestion UsageCategory = "suggestion"
)

// OperationType 寫入 token 使用紀錄的操作種類
type OperationType string

const (
	OperationModeration     OperationType = "moderation"
	OperationGenerateImage  OperationType = "generate_image"
	OperationEditImage      OperationType = "edit_image"
	OperationDescribeImage  OperationType = "describe_image"
	OperationSuggestPrompts OperationType = "suggest_prompts"
	OperationSuggestEdits   OperationType = "suggest_edits"
)

// ModerationKind 審查的內容來源
type ModerationKind string

const (
	ModerationKindGenerate ModerationKind = "generate"
	ModerationKindEdit     ModerationKind = "edit"
)

// AdminCredentialLabel 特權通行碼在用量紀錄中的代稱
const AdminCredentialLabel = "admin"

const (
	GeminiAPIVersion = "v1beta"
	OpenAIAPIVersion = "v1"
)

type OpenAIEndpoint string

const (
	OpenAIImageGenerateEndpoint OpenAIEndpoint = "/images/generations"
)

// 描述與建議失敗時的預設內容
const DefaultImageDescription = "AI-generated image"

var (
	DefaultPromptSuggestions = []string{
		"Sunset over mountains",
		"Magical forest cabin",
		"Futuristic neon city",
	}
	DefaultEditSuggestions = []string{
		"Add warm lighting",
		"Make it cooler",
		"Add more details",
	}
)

// DefaultModerationGuidelines 未設定時採用的審查規則
const DefaultModerationGuidelines = `1. No sexual or sexually suggestive content, and nothing involving minors in any questionable context.
2. No graphic violence, gore, self-harm or depictions of abuse.
3. No hate speech, harassment or content demeaning people for protected characteristics.
4. No realistic depictions of real, identifiable people, and no impersonation.
5. No illegal activity, weapons manufacturing or drug use instructions.
6. No political propaganda or misleading content about real events.
Content suitable for a general audience, including children, is appropriate.`
