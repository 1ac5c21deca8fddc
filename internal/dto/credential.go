package dto

import (
	"imagegate/internal/core"
	"time"
)

// 建立或覆寫通行碼
type UpsertCredentialDto struct {
	Code             string            `json:"code" binding:"required"`
	ValidDays        int               `json:"validDays" binding:"required,min=1"`
	ImageQuota       int               `json:"imageQuota" binding:"min=0"`
	SuggestionQuota  int               `json:"suggestionQuota" binding:"min=0"`
	BypassModeration bool              `json:"bypassModeration"`
	ImageBackend     core.ImageBackend `json:"imageBackend" binding:"omitempty,oneof=default alternate"`
}

// 部分更新；未提供的欄位不變動
type PatchCredentialDto struct {
	ValidDays        *int               `json:"validDays,omitempty" binding:"omitempty,min=1"`
	ImageQuota       *int               `json:"imageQuota,omitempty" binding:"omitempty,min=0"`
	SuggestionQuota  *int               `json:"suggestionQuota,omitempty" binding:"omitempty,min=0"`
	BypassModeration *bool              `json:"bypassModeration,omitempty"`
	ImageBackend     *core.ImageBackend `json:"imageBackend,omitempty" binding:"omitempty,oneof=default alternate"`
}

type CredentialResponseDto struct {
	Code             string            `json:"code"`
	ValidDays        int               `json:"validDays"`
	ImageQuota       int               `json:"imageQuota"`
	SuggestionQuota  int               `json:"suggestionQuota"`
	BypassModeration bool              `json:"bypassModeration"`
	ImageBackend     core.ImageBackend `json:"imageBackend"`
	CreatedAt        time.Time         `json:"createdAt"`
	ExpiresAt        time.Time         `json:"expiresAt"`
	Expired          bool              `json:"expired"`
}

type CredentialUsageResponseDto struct {
	UserID          string    `json:"userID"`
	CredentialCode  string    `json:"credentialCode"`
	ImageCount      int       `json:"imageCount"`
	SuggestionCount int       `json:"suggestionCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// 前端預先檢查通行碼
type AccessCheckDto struct {
	Code string `json:"code" binding:"required"`
}

type CredentialQuotasDto struct {
	ImageQuota       int               `json:"imageQuota"`
	SuggestionQuota  int               `json:"suggestionQuota"`
	BypassModeration bool              `json:"bypassModeration"`
	ImageBackend     core.ImageBackend `json:"imageBackend"`
	ExpiresAt        time.Time         `json:"expiresAt"`
}

type AccessCheckResponseDto struct {
	Valid   bool                 `json:"valid"`
	IsAdmin bool                 `json:"isAdmin"`
	Quotas  *CredentialQuotasDto `json:"quotas,omitempty"`
}
