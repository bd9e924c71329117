package trade

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spansByName(recorder *tracetest.SpanRecorder) map[string]sdktrace.ReadOnlySpan {
	out := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		out[s.Name()] = s
	}
	return out
}

func TestOrderServices_EmitSpans(t *testing.T) {
	recorder := recordSpans(t)
	f := newFixture(t)

	f.paidOrder(t, 1, 0)

	spans := spansByName(recorder)
	placed, ok := spans["checkout.place_order"]
	require.True(t, ok)
	assert.NotEqual(t, codes.Error, placed.Status().Code)

	gateway, ok := spans["payment_gateway.payment.capture"]
	require.True(t, ok)
	assert.Equal(t, trace.SpanKindClient, gateway.SpanKind())

	var orderSpan sdktrace.ReadOnlySpan
	for name, s := range spans {
		if strings.HasPrefix(name, "order.") {
			orderSpan = s
		}
	}
	require.NotNil(t, orderSpan)
}

func TestCheckoutService_PlaceOrder_FailureMarksSpan(t *testing.T) {
	recorder := recordSpans(t)
	f := newFixture(t)

	_, err := f.checkout().PlaceOrder(context.Background(), f.cart(f.line(f.variantA, "10.00", 500)))
	require.Error(t, err)

	placed, ok := spansByName(recorder)["checkout.place_order"]
	require.True(t, ok)
	assert.Equal(t, codes.Error, placed.Status().Code)
}
