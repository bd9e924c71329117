package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := NewProfiler(config.ProfilingConfig{}, "commerce-core", zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires a server address", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "commerce-core", zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("requires an application name", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, "", zap.NewNop())
		assert.Error(t, err)
	})
}

func TestWithProfilingLabels(t *testing.T) {
	var got map[string]string
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelOperation: OperationRefund,
		"order_id":              "8f1c",
		"Payment-Gateway":       "stripe",
	}, func(ctx context.Context) {
		got = map[string]string{}
		pprof.ForLabels(ctx, func(key, value string) bool {
			got[key] = value
			return true
		})
	})

	assert.Equal(t, map[string]string{
		ProfilingLabelOperation: OperationRefund,
		"payment_gateway":       "stripe",
	}, got)
}

func TestWithProfilingLabels_Empty(t *testing.T) {
	called := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}

func TestSanitizeLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)
	pairs := sanitizeLabels(map[string]string{
		"route":      "/orders/:id",
		"request_id": "abc",
		"empty":      "",
		"note":       long,
		"!!!":        "dropped",
	})
	assert.Equal(t, []string{"note", long[:MaxLabelValueLength], "route", "/orders/:id"}, pairs)
}

func TestOperationLabels(t *testing.T) {
	assert.Equal(t, map[string]string{"operation": "capture_payment", "gateway": "stripe"},
		OrderOperationLabels(OperationCapturePayment, "stripe"))
	assert.Equal(t, map[string]string{"operation": "place_order"}, OrderOperationLabels(OperationPlaceOrder, ""))
	assert.Equal(t, map[string]string{"route": "/api/v1/orders", "method": "GET"},
		HTTPRequestLabels("/api/v1/orders", "GET", ""))
}
