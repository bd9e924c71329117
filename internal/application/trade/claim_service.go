package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// ClaimService handles complaints about delivered goods
type ClaimService struct {
	engine
	provider trade.PaymentProvider
}

// NewClaimService creates a new ClaimService
func NewClaimService(scope TransactionScope, provider trade.PaymentProvider, settings Settings, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		engine:   newEngine(scope, settings, logger),
		provider: provider,
	}
}

// Create opens a claim on fulfilled units of an order
func (s *ClaimService) Create(ctx context.Context, storeID, orderID uuid.UUID, req CreateClaimRequest) (*ClaimResponse, error) {
	inputs := make([]trade.ClaimItemInput, len(req.Items))
	for i, it := range req.Items {
		inputs[i] = trade.ClaimItemInput{
			OrderItemID: it.OrderItemID,
			Quantity:    it.Quantity,
			Reason:      it.Reason,
			Note:        it.Note,
		}
	}

	var claim *trade.Claim
	_, err := s.inOrder(ctx, "claim.create", storeID, orderID, func(tx *orderTx) error {
		c, err := trade.NewClaim(tx.order, trade.ClaimType(req.Type), inputs, req.RefundAmount, req.Note)
		if err != nil {
			return err
		}
		if err := tx.repos.ClaimRepo().Save(ctx, c); err != nil {
			return err
		}
		tx.track(c)
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToClaimResponse(claim)
	return &resp, nil
}

// Approve accepts a pending claim, refunding its amount first when it has one
func (s *ClaimService) Approve(ctx context.Context, storeID, claimID uuid.UUID) (*ClaimResponse, error) {
	current, err := s.get(ctx, storeID, claimID)
	if err != nil {
		return nil, err
	}
	if current.Status != trade.ClaimStatusPending {
		return nil, shared.NewTransitionError("claim_status", string(current.Status), string(trade.ClaimStatusApproved))
	}

	decidedBy := actorRef(ctx)
	var claim *trade.Claim
	approve := func(tx *orderTx, refund *trade.Refund) error {
		c, err := tx.repos.ClaimRepo().FindByID(ctx, storeID, claimID)
		if err != nil {
			return err
		}
		if err := c.Approve(refund, decidedBy); err != nil {
			return err
		}
		if err := tx.repos.ClaimRepo().SaveWithLock(ctx, c); err != nil {
			return err
		}
		tx.track(c)
		claim = c
		return nil
	}

	if current.NeedsRefund() {
		prepare := func(repos TransactionalRepositories, _ *trade.Order) (trade.RefundRequest, error) {
			c, err := repos.ClaimRepo().FindByID(ctx, storeID, claimID)
			if err != nil {
				return trade.RefundRequest{}, err
			}
			if c.Status != trade.ClaimStatusPending {
				return trade.RefundRequest{}, shared.NewTransitionError("claim_status", string(c.Status), string(trade.ClaimStatusApproved))
			}
			return c.RefundRequest(), nil
		}
		_, _, err = s.refund(ctx, s.provider, "claim.approve", storeID, current.OrderID, prepare, approve)
	} else {
		_, err = s.inOrder(ctx, "claim.approve", storeID, current.OrderID, func(tx *orderTx) error {
			return approve(tx, nil)
		})
	}
	if err != nil {
		return nil, err
	}
	resp := ToClaimResponse(claim)
	return &resp, nil
}

// Reject turns a pending claim down
func (s *ClaimService) Reject(ctx context.Context, storeID, claimID uuid.UUID, req RejectClaimRequest) (*ClaimResponse, error) {
	var claim *trade.Claim
	err := s.retry(ctx, "claim.reject", func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			c, err := repos.ClaimRepo().FindByID(ctx, storeID, claimID)
			if err != nil {
				return err
			}
			if err := c.Reject(req.Reason, actorRef(ctx)); err != nil {
				return err
			}
			if err := repos.ClaimRepo().SaveWithLock(ctx, c); err != nil {
				return err
			}
			claim = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resp := ToClaimResponse(claim)
	return &resp, nil
}

// Get retrieves a claim by ID
func (s *ClaimService) Get(ctx context.Context, storeID, claimID uuid.UUID) (*ClaimResponse, error) {
	claim, err := s.get(ctx, storeID, claimID)
	if err != nil {
		return nil, err
	}
	resp := ToClaimResponse(claim)
	return &resp, nil
}

// ListByOrder lists the claims of an order
func (s *ClaimService) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]ClaimResponse, error) {
	var claims []trade.Claim
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		claims, err = repos.ClaimRepo().FindByOrder(ctx, storeID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ClaimResponse, len(claims))
	for i := range claims {
		out[i] = ToClaimResponse(&claims[i])
	}
	return out, nil
}

func (s *ClaimService) get(ctx context.Context, storeID, claimID uuid.UUID) (*trade.Claim, error) {
	var claim *trade.Claim
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		claim, err = repos.ClaimRepo().FindByID(ctx, storeID, claimID)
		return err
	})
	return claim, err
}

// actorRef returns the acting user as an optional reference
func actorRef(ctx context.Context) *uuid.UUID {
	id := ActorFromContext(ctx)
	if id == uuid.Nil {
		return nil
	}
	return &id
}
