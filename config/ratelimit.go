package config

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// RateLimit 對外部 AI 供應商的全域滑動視窗限流
type RateLimit struct {
	Ceiling       int    `mapstructure:"CEILING" json:"ceiling" yaml:"ceiling"`
	WindowSeconds int    `mapstructure:"WINDOW_SECONDS" json:"window_seconds" yaml:"window_seconds"`
	Backend       string `mapstructure:"BACKEND" json:"backend" yaml:"backend"` // memory / redis
}
