package logger

import (
	"fmt"

	"github.com/weatheria/weather-backend/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

// New builds a zap logger from the logging section of the config. An empty
// output path writes to stderr.
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "", "json":
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "@timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger}, nil
}

func NewDevelopment() *Logger {
	logger, _ := zap.NewDevelopment()
	return &Logger{logger}
}

func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
