package model

// ProviderUsageLog 每次供應商呼叫的成本紀錄，與 token_usages collection 同步送往 Fluentd
type ProviderUsageLog struct {
	RequestID        string  `json:"request_id,omitempty"`
	Operation        string  `json:"operation"`
	Model            string  `json:"model"`
	CredentialCode   string  `json:"credential_code,omitempty"`
	TokensPrompt     int     `json:"tokens_prompt"`
	TokensCompletion int     `json:"tokens_completion"`
	TokensThinking   int     `json:"tokens_thinking"`
	TokensTotal      int     `json:"tokens_total"`
	ImagesGenerated  int     `json:"images_generated"`
	Cost             float64 `json:"cost"`
	Version          string  `json:"version"`
	LoggedAt         string  `json:"logged_at"`
}
