package config

// Redis 只在 RATE_LIMIT__BACKEND=redis 時使用；Host 留空即停用
type Redis struct {
	Host     string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port     int    `mapstructure:"PORT" json:"port" yaml:"port"`
	Password string `mapstructure:"PASSWORD" json:"password" yaml:"password"`
	DB       int    `mapstructure:"DB" json:"db" yaml:"db"`
	// 多個環境共用同一台 redis 時以前綴區隔
	KeyPrefix string `mapstructure:"KEY_PREFIX" json:"keyPrefix" yaml:"keyPrefix"`
}
