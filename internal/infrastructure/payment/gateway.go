// Package payment adapts external payment services to the order core's
// PaymentProvider port.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Errors returned when the gateway cannot be reached or answers badly
var (
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayRequestFailed = errors.New("payment gateway request failed")
	ErrMissingGatewayURL    = errors.New("payment: missing gateway URL")
)

// IdempotencyKeyHeader lets the gateway drop a retried call
const IdempotencyKeyHeader = "Idempotency-Key"

// GatewayConfig configures the HTTP gateway adapter
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	// Timeout bounds one HTTP exchange; the caller's context may end it sooner
	Timeout time.Duration
	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper
}

// Validate validates the configuration
func (c *GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingGatewayURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// HTTPGateway talks JSON to a payment service exposing
// POST /payments, /payments/capture and /refunds
type HTTPGateway struct {
	config     GatewayConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPGateway creates a gateway adapter. Outgoing calls carry trace context.
func NewHTTPGateway(config GatewayConfig, logger *zap.Logger) (*HTTPGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &HTTPGateway{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		logger: logger,
	}, nil
}

type gatewayRequest struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Reference   string          `json:"reference,omitempty"`
	ReturnURL   string          `json:"return_url,omitempty"`
}

type gatewayResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
	Error         string `json:"error"`
}

// CreatePayment authorizes a payment
func (g *HTTPGateway) CreatePayment(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	return g.call(ctx, "/payments", req)
}

// Capture captures an authorized payment
func (g *HTTPGateway) Capture(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	return g.call(ctx, "/payments/capture", req)
}

// Refund refunds part or all of a captured payment
func (g *HTTPGateway) Refund(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	return g.call(ctx, "/refunds", req)
}

// call posts req to path. A declined payment is a result with Success false;
// transport failures and 5xx answers are errors.
func (g *HTTPGateway) call(ctx context.Context, path string, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	body, err := json.Marshal(gatewayRequest{
		OrderID:     req.OrderID.String(),
		OrderNumber: req.OrderNumber,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   req.Reference,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("payment: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(IdempotencyKeyHeader, req.IdempotencyKey)
	}
	if g.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payment: failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, resp.StatusCode)
	}

	var out gatewayResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", ErrGatewayRequestFailed, err)
	}
	// 4xx is a decline the gateway explained
	if resp.StatusCode >= http.StatusBadRequest {
		out.Success = false
		if out.Error == "" {
			out.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}

	g.logger.Debug("payment gateway answered",
		zap.String("path", path),
		zap.String("order_number", req.OrderNumber),
		zap.Bool("success", out.Success),
		zap.String("status", out.Status),
	)

	return &trade.PaymentResult{
		Success:       out.Success,
		Status:        out.Status,
		TransactionID: out.TransactionID,
		RedirectURL:   out.RedirectURL,
		Error:         out.Error,
	}, nil
}
