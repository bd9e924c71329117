package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// spanContext returns ctx carrying a valid remote span context
func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	t.Run("returns the stored logger", func(t *testing.T) {
		l, _ := observed()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		assert.NotPanics(t, func() { l.Info("dropped") })
	})

	t.Run("ignores values of the wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestCorrelationFields(t *testing.T) {
	base, logs := observed()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithStoreID(ctx, FromContext(ctx), "store-1")
	ctx, l := WithActorID(ctx, FromContext(ctx), "actor-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "store-1", GetStoreID(ctx))
	assert.Equal(t, "actor-1", GetActorID(ctx))
	assert.Same(t, l, FromContext(ctx))

	l.Info("order placed")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "store-1", fields["store_id"])
	assert.Equal(t, "actor-1", fields["actor_id"])
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetStoreID(ctx))
	assert.Empty(t, GetActorID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceCorrelation(t *testing.T) {
	ctx := spanContext(t)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
	assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))

	base, logs := observed()
	WithTraceContext(ctx, base).Info("traced")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])

	plain := zap.NewNop()
	assert.Same(t, plain, WithTraceContext(context.Background(), plain))
}

func TestContextFields(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))

	ctx := context.WithValue(spanContext(t), StoreIDKey, "store-9")
	keys := map[string]bool{}
	for _, f := range ContextFields(ctx) {
		keys[f.Key] = true
	}
	assert.Equal(t, map[string]bool{"trace_id": true, "span_id": true, "store_id": true}, keys)
}

func TestContextLogger(t *testing.T) {
	t.Run("L does not repeat fields bound to the context logger", func(t *testing.T) {
		base, logs := observed()
		ctx, _ := WithStoreID(spanContext(t), base, "store-1")

		L(ctx).Info("reserved", zap.Int("quantity", 2))

		entry := logs.All()[0]
		count := 0
		for _, f := range entry.Context {
			if f.Key == "store_id" {
				count++
			}
		}
		assert.Equal(t, 1, count)
		fields := entry.ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, int64(2), fields["quantity"])
	})

	t.Run("WithLogger adds every context field", func(t *testing.T) {
		base, logs := observed()
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-2")
		ctx = context.WithValue(ctx, StoreIDKey, "store-2")
		ctx = context.WithValue(ctx, ActorIDKey, "actor-2")

		WithLogger(ctx, base).With(zap.String("order_number", "ORD-1")).Warn("slow")

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-2", fields["request_id"])
		assert.Equal(t, "store-2", fields["store_id"])
		assert.Equal(t, "actor-2", fields["actor_id"])
		assert.Equal(t, "ORD-1", fields["order_number"])
	})

	t.Run("levels and nil logger", func(t *testing.T) {
		base, logs := observed()
		cl := WithLogger(context.Background(), base)
		cl.Debug("d")
		cl.Info("i")
		cl.Warn("w")
		cl.Error("e")
		assert.Equal(t, 4, logs.Len())
		assert.NotNil(t, cl.Zap())

		assert.NotPanics(t, func() { WithLogger(context.Background(), nil).Info("dropped") })
	})
}
