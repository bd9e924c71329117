package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultMaxRetries is how often a conflicting write is retried
	DefaultMaxRetries = 3
	// DefaultPaymentTimeout bounds a single gateway call
	DefaultPaymentTimeout = 30 * time.Second
)

// Settings tune the order orchestrators
type Settings struct {
	// AutoConfirmOnPayment confirms a pending order once payment is authorized or captured
	AutoConfirmOnPayment bool
	// MaxRetries is how often an operation is re-run after a concurrency conflict
	MaxRetries int
	// PaymentTimeout bounds every gateway call
	PaymentTimeout time.Duration
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		AutoConfirmOnPayment: true,
		MaxRetries:           DefaultMaxRetries,
		PaymentTimeout:       DefaultPaymentTimeout,
	}
}

type actorKey struct{}

// WithActor attaches the acting user to the context. Status history entries
// written during the request carry this id.
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the acting user, or uuid.Nil
func ActorFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// engine holds what every orchestrator needs: the transaction scope, the
// retry policy and a logger
type engine struct {
	scope    TransactionScope
	settings Settings
	logger   *zap.Logger
}

func newEngine(scope TransactionScope, settings Settings, logger *zap.Logger) engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxRetries < 0 {
		settings.MaxRetries = 0
	}
	if settings.PaymentTimeout <= 0 {
		settings.PaymentTimeout = DefaultPaymentTimeout
	}
	return engine{scope: scope, settings: settings, logger: logger}
}

// retry re-runs fn while it fails with a concurrency conflict
func (e *engine) retry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= e.settings.MaxRetries {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		e.logger.Warn("concurrency conflict, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
		)
		telemetry.AddEvent(trace.SpanFromContext(ctx), "retry_after_conflict", telemetry.SpanAttrAttempt, attempt+1)
	}
}

// read runs fn in a transaction that is not expected to write
func (e *engine) read(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return e.scope.Execute(ctx, fn)
}

// inOrder loads an order, lets fn mutate it, saves it with the version check
// and writes every collected event to the outbox, all in one transaction.
// Concurrency conflicts reload the order and run fn again.
func (e *engine) inOrder(ctx context.Context, op string, storeID, orderID uuid.UUID, fn func(tx *orderTx) error) (*trade.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", op,
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID),
	)
	defer span.End()

	var result *trade.Order
	err := e.retry(ctx, op, func() error {
		return e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			order, err := repos.OrderRepo().FindByIDForUpdate(ctx, storeID, orderID)
			if err != nil {
				return err
			}
			order.ActingAs(ActorFromContext(ctx))
			tx := &orderTx{ctx: ctx, repos: repos, order: order}
			tx.track(order)
			if err := fn(tx); err != nil {
				return err
			}
			if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
				return err
			}
			if err := tx.flush(); err != nil {
				return err
			}
			result = order
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, result.OrderNumber,
		telemetry.SpanAttrOrderStatus, string(result.Status),
	)
	return result, nil
}

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// orderTx is one unit of work on an order. Ledger movements posted through
// it are recorded as stock events next to the aggregates' own events.
type orderTx struct {
	ctx       context.Context
	repos     TransactionalRepositories
	order     *trade.Order
	sources   []eventSource
	movements []*inventory.StockMovement
}

func (t *orderTx) track(src eventSource) {
	t.sources = append(t.sources, src)
}

func (t *orderTx) reserve(reqs []trade.StockRequest, ref inventory.Reference) error {
	for _, r := range reqs {
		if r.Quantity <= 0 {
			continue
		}
		m, err := t.repos.Ledger().Reserve(t.ctx, r.VariantID, r.LocationID, r.Quantity, ref)
		if err != nil {
			return err
		}
		t.movements = append(t.movements, m)
	}
	return nil
}

func (t *orderTx) release(reqs []trade.StockRequest, ref inventory.Reference) error {
	for _, r := range reqs {
		if r.Quantity <= 0 {
			continue
		}
		m, err := t.repos.Ledger().Release(t.ctx, r.VariantID, r.LocationID, r.Quantity, ref)
		if err != nil {
			return err
		}
		t.movements = append(t.movements, m)
	}
	return nil
}

func (t *orderTx) consume(reqs []trade.StockRequest, ref inventory.Reference) error {
	for _, r := range reqs {
		m, err := t.repos.Ledger().Consume(t.ctx, r.VariantID, r.LocationID, r.Quantity, ref)
		if err != nil {
			return err
		}
		t.movements = append(t.movements, m)
	}
	return nil
}

// restock puts units back on hand
func (t *orderTx) restock(reqs []trade.StockRequest, reason string, ref inventory.Reference) error {
	for _, r := range reqs {
		m, err := t.repos.Ledger().Adjust(t.ctx, r.VariantID, r.LocationID, r.Quantity, reason, ref)
		if err != nil {
			return err
		}
		t.movements = append(t.movements, m)
	}
	return nil
}

func (t *orderTx) flush() error {
	var events []shared.DomainEvent
	for _, src := range t.sources {
		events = append(events, src.GetDomainEvents()...)
	}
	for _, m := range t.movements {
		if m != nil {
			events = append(events, inventory.NewStockMovedEvent(m))
		}
	}
	if err := t.repos.Events().Record(t.ctx, events...); err != nil {
		return fmt.Errorf("failed to record events: %w", err)
	}
	for _, src := range t.sources {
		src.ClearDomainEvents()
	}
	return nil
}

// gatewayCall is one of the PaymentProvider methods
type gatewayCall func(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error)

// callGateway runs a payment call outside any transaction, bounded by the
// payment timeout. A timeout or transport error is a failed outcome.
func (e *engine) callGateway(ctx context.Context, op string, call gatewayCall, req trade.PaymentRequest) (trade.GatewayOutcome, *trade.PaymentResult) {
	gctx, span := telemetry.StartServiceSpan(ctx, "payment_gateway", op,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, req.OrderID),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()),
		telemetry.WithAttribute(telemetry.SpanAttrCurrency, req.Currency),
	)
	defer span.End()
	gctx, cancel := context.WithTimeout(gctx, e.settings.PaymentTimeout)
	defer cancel()

	var (
		res *trade.PaymentResult
		err error
	)
	telemetry.WithProfilingLabels(gctx, telemetry.OrderOperationLabels(op, ""), func(c context.Context) {
		res, err = call(c, req)
	})
	switch {
	case err != nil:
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "payment gateway timed out"
		}
		e.logger.Warn("payment gateway call failed",
			zap.String("operation", op),
			zap.String("order_id", req.OrderID.String()),
			zap.Error(err),
		)
		telemetry.RecordError(span, err)
		return trade.GatewayOutcome{Error: msg}, nil
	case res == nil:
		return trade.GatewayOutcome{Error: "payment gateway returned no result"}, nil
	case !res.Success:
		msg := res.Error
		if msg == "" {
			msg = "payment declined: " + res.Status
		}
		telemetry.SetAttributes(span, "gateway.declined", true, telemetry.SpanAttrGatewayReference, res.TransactionID)
		return trade.GatewayOutcome{Reference: res.TransactionID, Error: msg}, res
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrGatewayReference, res.TransactionID)
	return trade.GatewayOutcome{Succeeded: true, Reference: res.TransactionID}, res
}

// gatewayReference returns the reference of the latest successful capture,
// falling back to the latest successful authorization
func gatewayReference(o *trade.Order) string {
	ref := ""
	for _, tx := range o.Transactions {
		if !tx.IsSuccessful() || tx.GatewayReference == "" {
			continue
		}
		switch tx.Type {
		case trade.TransactionTypeCapture:
			ref = tx.GatewayReference
		case trade.TransactionTypeAuthorization:
			if ref == "" {
				ref = tx.GatewayReference
			}
		}
	}
	return ref
}

func orderRef(orderID uuid.UUID) inventory.Reference {
	return inventory.NewReference(inventory.ReferenceOrder, orderID)
}
