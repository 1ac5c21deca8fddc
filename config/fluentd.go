package config

// Fluentd 用量與請求紀錄的轉送目標；Host 留空即不轉送
type Fluentd struct {
	Host      string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port      int    `mapstructure:"PORT" json:"port" yaml:"port"`
	TagPrefix string `mapstructure:"TAG_PREFIX" json:"tagPrefix" yaml:"tagPrefix"`
	// 毫秒
	Timeout int64 `mapstructure:"TIMEOUT" json:"timeout" yaml:"timeout"`
	// 預設非同步送出；開啟後每筆同步寫入
	Sync     bool `mapstructure:"SYNC" json:"sync" yaml:"sync"`
	MaxRetry int  `mapstructure:"MAX_RETRY" json:"maxRetry" yaml:"maxRetry"`
}
