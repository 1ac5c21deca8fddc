package dto

type SuggestPromptsDto struct {
	UserGUID   string `json:"userGuid" binding:"required"`
	AccessCode string `json:"accessCode" binding:"required"`
	Keyword    string `json:"keyword"`
	Language   string `json:"language" binding:"omitempty,oneof=fi en FI EN"`
}

type SuggestEditsDto struct {
	UserGUID   string `json:"userGuid" binding:"required"`
	AccessCode string `json:"accessCode" binding:"required"`
	Keyword    string `json:"keyword"`
	Language   string `json:"language" binding:"omitempty,oneof=fi en FI EN"`
}

type SuggestionsResponseDto struct {
	Suggestions []string `json:"suggestions"`
	Fallback    bool     `json:"fallback"`
}

type DescriptionResponseDto struct {
	Description string `json:"description"`
}
