package log

import (
	"os"

	"imagegate/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger JSON 輸出，warn 以下寫 stdout、warn 以上寫 stderr，
// 每筆帶 service / env / version 欄位供 fluentd 與 log 平台篩選
func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	level := parseLevel(conf.Log.Level)
	core := newCore(newEncoder(conf.Log.Format), level, zapcore.AddSync(os.Stdout), zapcore.AddSync(os.Stderr))

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(
			zap.String("service", conf.App.Name),
			zap.String("env", conf.App.Env),
			zap.String("version", conf.App.Version),
		),
	)
	logger.Info("zap logger ready", zap.String("level", level.String()), zap.String("format", formatName(conf.Log.Format)))
	return logger, nil
}

// 無法辨識的層級一律 info
func parseLevel(raw string) zapcore.Level {
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func formatName(raw string) string {
	if raw == "console" {
		return "console"
	}
	return "json"
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"
	encCfg.TimeKey = "ts"
	encCfg.CallerKey = "caller"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if formatName(format) == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

func newCore(encoder zapcore.Encoder, level zapcore.Level, stdout, stderr zapcore.WriteSyncer) zapcore.Core {
	atomic := zap.NewAtomicLevelAt(level)
	return zapcore.NewTee(
		zapcore.NewCore(encoder, stdout, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return atomic.Enabled(l) && l < zapcore.WarnLevel
		})),
		zapcore.NewCore(encoder, stderr, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return atomic.Enabled(l) && l >= zapcore.WarnLevel
		})),
	)
}
