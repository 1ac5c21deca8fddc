package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app"`
	Redis     Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	MongoDB   MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
	RateLimit RateLimit       `mapstructure:"RATE_LIMIT" json:"rate_limit" yaml:"rate_limit"`
	Provider  Provider        `mapstructure:"PROVIDER" json:"provider" yaml:"provider"`
	Storage   Storage         `mapstructure:"STORAGE" json:"storage" yaml:"storage"`
}

// ApplyDefaults 補齊未設定的欄位
func (c *Configuration) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "imagegate"
	}
	if c.App.Port == 0 {
		c.App.Port = 8000
	}
	if c.App.AdminSecret == "" {
		c.App.AdminSecret = "admin123"
	}
	if c.MongoDB.URI == "" {
		c.MongoDB.URI = "mongodb://localhost:27017"
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = "imagegate"
	}
	if c.RateLimit.Ceiling <= 0 {
		c.RateLimit.Ceiling = 400
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = RateLimitBackendMemory
	}
	if c.Provider.GeminiBaseURL == "" {
		c.Provider.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.Provider.OpenAIBaseURL == "" {
		c.Provider.OpenAIBaseURL = "https://api.openai.com"
	}
	if c.Provider.ImageModel == "" {
		c.Provider.ImageModel = "gemini-2.5-flash-image-preview"
	}
	if c.Provider.TextModel == "" {
		c.Provider.TextModel = "gemini-2.5-flash-lite"
	}
	if c.Provider.AlternateImageModel == "" {
		c.Provider.AlternateImageModel = "gpt-image-1"
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = 120
	}
	if c.Storage.ImagesPath == "" {
		c.Storage.ImagesPath = "./data/images"
	}
}
