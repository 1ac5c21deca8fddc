package config

type App struct {
	// 當前開發環境
	Env string `mapstructure:"ENV" json:"env" yaml:"env"`
	// 服務端口
	Port uint32 `mapstructure:"PORT" json:"port" yaml:"port"`
	// 服務名稱
	Name string `mapstructure:"NAME" json:"name" yaml:"name"`
	// 服務版本
	Version string `mapstructure:"VERSION" json:"version" yaml:"version"`
	// 管理員密碼，同時作為不受配額限制的特權通行碼（大小寫敏感）
	AdminSecret    string `mapstructure:"ADMIN_SECRET" json:"admin_secret" yaml:"admin_secret"`
	SwaggerEnabled bool   `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
	PprofEnabled   bool   `mapstructure:"PPROF_ENABLED" json:"pprof_enabled" yaml:"pprof_enabled"`
	// 允許的前端來源，逗號分隔；留空為 *
	CorsOrigins []string `mapstructure:"CORS_ORIGINS" json:"cors_origins" yaml:"cors_origins"`
}
