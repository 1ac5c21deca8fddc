package dto

import "time"

type AdminLoginDto struct {
	Password string `json:"password" binding:"required"`
}

type AdminLoginResponseDto struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

type AdminStatsResponseDto struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalImages  int64 `json:"totalImages"`
	RecentUsers  int64 `json:"recentUsers"`
	RecentImages int64 `json:"recentImages"`
}

type GuidelinesDto struct {
	Guidelines string `json:"guidelines" binding:"required"`
}

type GuidelinesResponseDto struct {
	Guidelines string     `json:"guidelines"`
	IsDefault  bool       `json:"isDefault"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
