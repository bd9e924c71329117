package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfigs(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "info", dev.Level)
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "stdout", dev.Output)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.NotEmpty(t, prod.TimeFormat)
}

func TestNew(t *testing.T) {
	for _, cfg := range []*Config{DefaultConfig(), ProductionConfig()} {
		l, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}

	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestProductionSampling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampled.log")
	cfg := ProductionConfig()
	cfg.Output = path

	l, err := New(cfg)
	require.NoError(t, err)
	for i := 0; i < 250; i++ {
		l.Info("stock below threshold")
	}
	_ = l.Sync()

	// the first 100 per second pass, then one in every 100
	lines := len(readLines(t, path))
	assert.GreaterOrEqual(t, lines, 101)
	assert.Less(t, lines, 250)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

// readLines decodes every JSON log line written to path
func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.log")

	l, err := FromConfig(
		config.AppConfig{Name: "commerce-core", Env: "production"},
		config.LogConfig{Level: "warn", Output: path},
	)
	require.NoError(t, err)

	l.Info("filtered out")
	l.Warn("reservation released twice", zap.String("order_number", "ORD-20261019-00001"))
	_ = l.Sync()

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "reservation released twice", entry["msg"])
	assert.Equal(t, "commerce-core", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "ORD-20261019-00001", entry["order_number"])
	assert.Contains(t, entry, "caller")
}

func TestOpenOutput(t *testing.T) {
	for _, out := range []string{"", "stdout", "STDERR"} {
		w, err := openOutput(out)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}

	path := filepath.Join(t.TempDir(), "app.log")
	_, err := openOutput(path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSync(t *testing.T) {
	assert.NoError(t, Sync(zap.NewNop()))
}
