package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"imagegate/config"
	"imagegate/internal/command"
	"imagegate/internal/log"
	"imagegate/utils/path"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "imagegate/cmd/docs"
)

var (
	rootPath = path.RootPath()
	Version  string
	envPath  string
	yamlPath string
	conf     *config.Configuration
	logger   *zap.Logger
)

func configFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.StringVarP(&envPath, "env", "e", "", "Environment file, e.g. --env .env")
	flags.StringVarP(&yamlPath, "config", "c", "", "YAML config file, e.g. --config config.yaml")
	return flags
}

// @title        imagegate API
// @version      1.0
// @description  AI 生圖 / 改圖與通行碼配額後端 API 文件
// @host         localhost:8000
// @basePath     /api

// @securityDefinitions.apikey AdminAuth
// @in   header
// @name Authorization
// @description 請在欄位輸入 "Bearer {admin password}"
func main() {
	rootCmd := &cobra.Command{
		Use: "app",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envPath != "" && yamlPath != "" {
				fmt.Println("同時指定 --env 與 --config，將以 --env 優先")
			}
			initConfig()
			if conf == nil {
				return errors.New("config is nil! Check config/initConfig logic")
			}
			var err error
			// 初始化 logger
			if logger, err = log.NewLogger(conf); err != nil {
				return fmt.Errorf("init logger failed: %w", err)
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			defer logger.Sync()
			app, cleanup, err := wireApp(conf, logger)
			if err != nil {
				panic(err)
			}
			defer cleanup()

			logger.Info("start app ...")
			if err := app.Run(); err != nil {
				panic(err)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("shutdown app ...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := app.Stop(ctx); err != nil {
				panic(err)
			}
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(configFlags())

	command.Register(rootCmd, func() (*command.Command, func(), error) {
		return wireCommand(conf, logger)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	useFile := false

	if envPath != "" {
		useFile = true
		envPath = path.Resolve(rootPath, envPath)
		fmt.Println("load .env config:", envPath)
		v.SetConfigFile(envPath)
		v.SetConfigType("env")
	} else if yamlPath != "" {
		useFile = true
		yamlPath = path.Resolve(filepath.Join(rootPath, "conf"), yamlPath)
		fmt.Println("load yaml config:", yamlPath)
		v.SetConfigFile(yamlPath)
		v.SetConfigType("yaml")
	} else {
		fmt.Println("No configuration file specified, using environment variables only.")
	}

	if useFile {
		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("read config failed: %w", err))
		}
		v.WatchConfig()
		v.OnConfigChange(func(in fsnotify.Event) {
			fmt.Println("config file changed:", in.Name)
			if err := v.Unmarshal(&conf); err != nil {
				fmt.Println("unmarshal on change failed:", err)
				return
			}
			conf.ApplyDefaults()
		})
	}

	bindEnvs(v, reflect.TypeOf(config.Configuration{}))

	if err := v.Unmarshal(&conf); err != nil {
		fmt.Println("unmarshal config failed:", err)
	}
	if conf == nil {
		conf = &config.Configuration{}
	}
	if Version != "" {
		conf.App.Version = Version
	}
	conf.ApplyDefaults()
}

func bindEnvs(v *viper.Viper, t reflect.Type, path ...string) {
	// 若遇到指標，取其 Elem
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			tag = field.Name
		}
		newPath := append(append([]string{}, path...), tag)
		if field.Type.Kind() == reflect.Struct || (field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct) {
			bindEnvs(v, field.Type, newPath...)
		} else {
			v.BindEnv(strings.Join(newPath, "__"))
		}
	}
}
