package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(context.Background()))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounter(t *testing.T) {
	mp, reader := newManualMeter(t)
	ctx := context.Background()

	counter, err := NewCounter(mp.Meter("test"), "test_total", "test counter", "{op}")
	require.NoError(t, err)
	counter.Inc(ctx, AttrOperation.String("a"))
	counter.Add(ctx, 4, AttrOperation.String("a"))
	counter.Inc(ctx, AttrOperation.String("b"))

	rm := collect(t, reader)
	assert.Equal(t, int64(5), intValue(t, rm, "test_total", AttrOperation.String("a")))
	assert.Equal(t, int64(1), intValue(t, rm, "test_total", AttrOperation.String("b")))
}

func TestHistogram_RecordDuration(t *testing.T) {
	mp, reader := newManualMeter(t)

	h, err := NewHistogram(mp.Meter("test"), HistogramOpts{
		Name:       "test_duration_seconds",
		Unit:       "s",
		Boundaries: GatewayDurationBuckets,
	})
	require.NoError(t, err)
	h.RecordDuration(context.Background(), 250*time.Millisecond)
	h.Record(context.Background(), 1.5)

	m, ok := findMetric(collect(t, reader), "test_duration_seconds")
	require.True(t, ok)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 1.75, hist.DataPoints[0].Sum, 1e-9)
}
