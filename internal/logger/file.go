package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig controls the rotating log file
type FileConfig struct {
	LogFile    string
	MaxSize    int // megabytes
	MaxAge     int // days
	MaxBackups int
	Compress   bool
	Debug      bool
}

// DefaultFileConfig returns the rotation settings used by the terminal UI
func DefaultFileConfig() FileConfig {
	return FileConfig{
		LogFile:    "token-pulse.log",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

func fileCore(cfg FileConfig, level zapcore.Level) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level)
}

// NewFileLogger writes JSON lines to a rotating file only
func NewFileLogger(cfg FileConfig) *zap.Logger {
	return zap.New(fileCore(cfg, levelFor(cfg.Debug)), zap.AddStacktrace(zapcore.ErrorLevel))
}

// CreateTUILogger never writes to the terminal, which the UI owns. Entries
// go to the rotating file and, when buffer is set, to the in-memory ring
// the UI reads its status line from.
func CreateTUILogger(cfg FileConfig, buffer *LogBuffer) *zap.Logger {
	level := levelFor(cfg.Debug)
	cores := []zapcore.Core{fileCore(cfg, level)}
	if buffer != nil {
		cores = append(cores, buffer.Core(zapcore.WarnLevel))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
