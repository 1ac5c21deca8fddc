package dto

import (
	"imagegate/internal/core"
	"time"
)

type GenerateImageDto struct {
	Prompt     string `json:"prompt" binding:"required"`
	UserGUID   string `json:"userGuid" binding:"required"`
	AccessCode string `json:"accessCode" binding:"required"`
}

type EditImageDto struct {
	ImageID    string `json:"imageId" binding:"required"`
	EditPrompt string `json:"editPrompt" binding:"required"`
	UserGUID   string `json:"userGuid" binding:"required"`
	AccessCode string `json:"accessCode" binding:"required"`
}

type ImageResponseDto struct {
	ID              string            `json:"id"`
	UserGUID        string            `json:"userGuid"`
	FileName        string            `json:"fileName"`
	URL             string            `json:"url"`
	Prompt          string            `json:"prompt"`
	Description     string            `json:"description"`
	Backend         core.ImageBackend `json:"backend,omitempty"`
	OriginalImageID string            `json:"originalImageId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type ImageListResponseDto struct {
	Images []*ImageResponseDto `json:"images"`
}
