package config

type Provider struct {
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY" json:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiBaseURL       string `mapstructure:"GEMINI_BASE_URL" json:"gemini_base_url" yaml:"gemini_base_url"`
	OpenAIAPIKey        string `mapstructure:"OPENAI_API_KEY" json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIBaseURL       string `mapstructure:"OPENAI_BASE_URL" json:"openai_base_url" yaml:"openai_base_url"`
	ImageModel          string `mapstructure:"IMAGE_MODEL" json:"image_model" yaml:"image_model"`
	TextModel           string `mapstructure:"TEXT_MODEL" json:"text_model" yaml:"text_model"`
	AlternateImageModel string `mapstructure:"ALTERNATE_IMAGE_MODEL" json:"alternate_image_model" yaml:"alternate_image_model"`
	TimeoutSeconds      int    `mapstructure:"TIMEOUT_SECONDS" json:"timeout_seconds" yaml:"timeout_seconds"`
}
