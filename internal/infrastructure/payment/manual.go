package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// ManualProvider settles every request immediately. It serves stores that
// take payment offline (cash on delivery, bank transfer) and local setups
// without a payment service.
type ManualProvider struct {
	logger *zap.Logger
}

// NewManualProvider creates a ManualProvider
func NewManualProvider(logger *zap.Logger) *ManualProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManualProvider{logger: logger}
}

func (p *ManualProvider) settle(ctx context.Context, kind string, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := "manual_" + uuid.NewString()
	p.logger.Info("manual payment recorded",
		zap.String("kind", kind),
		zap.String("order_number", req.OrderNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("reference", ref),
	)
	return &trade.PaymentResult{Success: true, Status: "succeeded", TransactionID: ref}, nil
}

// CreatePayment implements trade.PaymentProvider
func (p *ManualProvider) CreatePayment(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	return p.settle(ctx, "authorization", req)
}

// Capture implements trade.PaymentProvider
func (p *ManualProvider) Capture(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	return p.settle(ctx, "capture", req)
}

// Refund implements trade.PaymentProvider
func (p *ManualProvider) Refund(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	return p.settle(ctx, "refund", req)
}

// NewProvider returns the HTTP gateway when a base URL is configured and the
// manual provider otherwise
func NewProvider(cfg GatewayConfig, logger *zap.Logger) (trade.PaymentProvider, error) {
	if cfg.BaseURL == "" {
		return NewManualProvider(logger), nil
	}
	return NewHTTPGateway(cfg, logger)
}
