// internal/logger/pretty.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(prettyEncoderConfig())
}

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// CreatePrettyLogger creates a logger with user-friendly output on stdout
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	return NewPrettyLogger(debug, os.Stdout), nil
}

// NewPrettyLogger writes colored console lines to w. Outside debug mode
// structured fields are dropped and well-known messages are rewritten.
func NewPrettyLogger(debug bool, w io.Writer) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(prettyEncoderConfig()),
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
		level,
	)
	return zap.New(&FieldFilterCore{core: core, keepFields: debug})
}

// FormatMessage creates user-friendly log messages
func FormatMessage(msg string, fields ...zapcore.Field) string {
	switch {
	case strings.Contains(msg, "Initial tokens loaded"):
		return fmt.Sprintf("%s📋 Loaded %s new pairs, %s final stretch, %s migrated%s", ColorBlue,
			extractField(fields, "new_pairs"),
			extractField(fields, "final_stretch"),
			extractField(fields, "migrated"),
			ColorReset)

	case strings.Contains(msg, "Engine started"):
		return fmt.Sprintf("%s🚀 Pulse feed started on %s%s", ColorGreen, extractField(fields, "active"), ColorReset)

	case strings.Contains(msg, "Engine stopped"):
		return fmt.Sprintf("%s✓ Pulse feed stopped%s", ColorGreen, ColorReset)

	case strings.Contains(msg, "Quick buy requested"):
		return fmt.Sprintf("%s⚡ Quick buy %s SOL of %s%s\n    Contract: %s", ColorCyan,
			extractField(fields, "amount_sol"),
			extractField(fields, "token"),
			ColorReset,
			shortenAddress(extractField(fields, "contract")))

	case strings.Contains(msg, "HTTP server listening"):
		return fmt.Sprintf("%s🌐 API listening on %s%s", ColorPurple, extractField(fields, "addr"), ColorReset)

	case strings.Contains(msg, "Initial load failed"):
		return fmt.Sprintf("%s✗ Initial load failed: %s%s", ColorRed, extractField(fields, "error"), ColorReset)

	default:
		return msg
	}
}

// Helper functions
func extractField(fields []zapcore.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.Int64Type, zapcore.Int32Type:
			return fmt.Sprintf("%d", field.Integer)
		case zapcore.Float64Type:
			enc := zapcore.NewMapObjectEncoder()
			field.AddTo(enc)
			return fmt.Sprintf("%v", enc.Fields[key])
		case zapcore.ErrorType:
			if err, ok := field.Interface.(error); ok {
				return err.Error()
			}
		}
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

func shortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

// FieldFilterCore wraps a zapcore.Core, rewriting well-known messages and
// optionally dropping structured fields.
type FieldFilterCore struct {
	core       zapcore.Core
	keepFields bool
	context    []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	ctx := make([]zapcore.Field, 0, len(c.context)+len(fields))
	ctx = append(ctx, c.context...)
	ctx = append(ctx, fields...)
	return &FieldFilterCore{core: c.core, keepFields: c.keepFields, context: ctx}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.context...), fields...)

	cleanEntry := entry
	cleanEntry.Message = FormatMessage(entry.Message, all...)

	if !c.keepFields {
		return c.core.Write(cleanEntry, nil)
	}
	return c.core.Write(cleanEntry, all)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}
