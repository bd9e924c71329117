package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string
	// Sample thins out repeated entries: after the first 100 identical
	// messages in a second only every 100th is kept
	Sample bool
}

// DefaultConfig is the development setup: colored console output at info
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: defaultTimeFormat,
	}
}

// ProductionConfig writes sampled JSON lines to stdout
func ProductionConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: defaultTimeFormat,
		Sample:     true,
	}
}

// New builds a zap logger. It fails when a file output cannot be opened.
func New(cfg *Config) (*zap.Logger, error) {
	writer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg), writer, parseLevel(cfg.Level))
	if cfg.Sample {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// FromConfig builds the process logger from the application settings and
// tags every entry with the service name and environment
func FromConfig(app config.AppConfig, cfg config.LogConfig) (*zap.Logger, error) {
	base := DefaultConfig()
	if app.Env == "production" {
		base = ProductionConfig()
	}
	if cfg.Level != "" {
		base.Level = cfg.Level
	}
	if cfg.Format != "" {
		base.Format = cfg.Format
	}
	if cfg.Output != "" {
		base.Output = cfg.Output
	}

	l, err := New(base)
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("service", app.Name), zap.String("env", app.Env)), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(cfg *Config) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = defaultTimeFormat
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if cfg.Format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openOutput(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log output %q: %w", output, err)
	}
	return zapcore.AddSync(file), nil
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync(logger *zap.Logger) error {
	if err := logger.Sync(); err != nil && !isTerminalSyncError(err) {
		return err
	}
	return nil
}

func isTerminalSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
