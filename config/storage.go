package config

type Storage struct {
	ImagesPath string `mapstructure:"IMAGES_PATH" json:"images_path" yaml:"images_path"`
}
