package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelStoreID   = "store_id"
	ProfilingLabelOperation = "operation"
	ProfilingLabelGateway   = "gateway"
)

// Order core operations used as profiling and span names
const (
	OperationPlaceOrder       = "place_order"
	OperationCapturePayment   = "capture_payment"
	OperationAuthorizePayment = "authorize_payment"
	OperationRefund           = "refund"
	OperationFulfill          = "fulfill"
	OperationCancelOrder      = "cancel_order"
	OperationProcessExchange  = "process_exchange"
	OperationConfirmEdit      = "confirm_order_edit"
)

// MaxLabelValueLength caps label values
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped from profiling labels.
var HighCardinalityLabels = map[string]bool{
	"actor_id":     true,
	"request_id":   true,
	"order_id":     true,
	"order_number": true,
	"cart_id":      true,
	"trace_id":     true,
	"span_id":      true,
}

// WithProfilingLabels runs fn with pprof labels attached so Pyroscope can
// slice samples by them.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// OrderOperationLabels labels an order core operation, optionally with the
// payment gateway involved.
func OrderOperationLabels(operation, gateway string) map[string]string {
	labels := map[string]string{ProfilingLabelOperation: operation}
	if gateway != "" {
		labels[ProfilingLabelGateway] = gateway
	}
	return labels
}

// HTTPRequestLabels labels a request by route, method and store.
func HTTPRequestLabels(route, method, storeID string) map[string]string {
	labels := make(map[string]string, 3)
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	if storeID != "" {
		labels[ProfilingLabelStoreID] = storeID
	}
	return labels
}

// sanitizeLabels returns sorted key/value pairs with empty and
// high-cardinality entries removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(labels))
	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" || HighCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		if k := sanitizeLabelKey(key); k != "" {
			pairs = append(pairs, k, value)
		}
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, key)
}
