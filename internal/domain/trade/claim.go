package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeClaim = "Claim"

// ClaimStatus represents the status of a claim
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// CanTransitionTo checks if the claim can move to target
func (s ClaimStatus) CanTransitionTo(target ClaimStatus) bool {
	return s == ClaimStatusPending && (target == ClaimStatusApproved || target == ClaimStatusRejected)
}

// ClaimType is how a claim is settled
type ClaimType string

const (
	ClaimTypeRefund  ClaimType = "refund"
	ClaimTypeReplace ClaimType = "replace"
)

// IsValid checks if the claim type is valid
func (t ClaimType) IsValid() bool {
	return t == ClaimTypeRefund || t == ClaimTypeReplace
}

// ClaimItem is one line a claim is about
type ClaimItem struct {
	ID          uuid.UUID
	ClaimID     uuid.UUID
	OrderItemID uuid.UUID
	Quantity    int
	Reason      string // e.g. damaged, wrong_item, missing_item
	Note        string
}

// ClaimItemInput describes a claimed line
type ClaimItemInput struct {
	OrderItemID uuid.UUID
	Quantity    int
	Reason      string
	Note        string
}

// Claim is a defect or complaint on delivered goods. Approval may refund
// without the goods coming back.
type Claim struct {
	shared.StoreAggregateRoot
	OrderID      uuid.UUID
	Type         ClaimType
	Status       ClaimStatus
	Items        []ClaimItem
	RefundAmount decimal.Decimal
	Note         string
	RejectReason string
	RefundID     *uuid.UUID
	DecidedBy    *uuid.UUID
	DecidedAt    *time.Time
}

// NewClaim validates a claim against the order's fulfilled quantities
func NewClaim(order *Order, claimType ClaimType, inputs []ClaimItemInput, refundAmount decimal.Decimal, note string) (*Claim, error) {
	if !claimType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown claim type %q", claimType)
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Claim requires at least one item")
	}
	if refundAmount.IsNegative() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAmount, "Refund amount cannot be negative, got %s", refundAmount)
	}
	if claimType == ClaimTypeReplace && !refundAmount.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "A replacement claim carries no refund")
	}

	c := &Claim{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(order.StoreID),
		OrderID:            order.ID,
		Type:               claimType,
		Status:             ClaimStatusPending,
		Items:              make([]ClaimItem, 0, len(inputs)),
		RefundAmount:       order.Currency.Round(refundAmount),
		Note:               note,
	}
	claimed := make(map[uuid.UUID]int, len(inputs))
	for _, in := range inputs {
		item := order.GetItem(in.OrderItemID)
		if item == nil {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", in.OrderItemID)
		}
		if in.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeValidation, "Claim quantity must be positive")
		}
		claimed[item.ID] += in.Quantity
		if claimed[item.ID] > item.FulfilledQuantity {
			return nil, shared.NewDomainErrorf(shared.CodeOverReturn,
				"Cannot claim %d units of %s: only %d fulfilled", claimed[item.ID], item.Title, item.FulfilledQuantity)
		}
		c.Items = append(c.Items, ClaimItem{
			ID:          uuid.New(),
			ClaimID:     c.ID,
			OrderItemID: item.ID,
			Quantity:    in.Quantity,
			Reason:      in.Reason,
			Note:        in.Note,
		})
	}
	return c, nil
}

// NeedsRefund returns true if approving the claim moves money
func (c *Claim) NeedsRefund() bool {
	return c.RefundAmount.IsPositive()
}

// RefundRequest builds the refund owed for this claim
func (c *Claim) RefundRequest() RefundRequest {
	items := make([]RefundItem, len(c.Items))
	for i, ci := range c.Items {
		items[i] = RefundItem{OrderItemID: ci.OrderItemID, Quantity: ci.Quantity, Amount: decimal.Zero}
	}
	id := c.ID
	return RefundRequest{
		Amount:     c.RefundAmount,
		Reason:     "claim",
		Note:       c.Note,
		Items:      items,
		SourceType: RefundSourceClaim,
		SourceID:   &id,
	}
}

// Approve accepts the claim. A claim with a refund amount needs the
// succeeded refund recorded on the order.
func (c *Claim) Approve(refund *Refund, decidedBy *uuid.UUID) error {
	if !c.Status.CanTransitionTo(ClaimStatusApproved) {
		return shared.NewTransitionError("claim_status", string(c.Status), string(ClaimStatusApproved))
	}
	if c.NeedsRefund() {
		if refund == nil || refund.Status != RefundStatusSucceeded {
			return shared.NewDomainError(shared.CodeInvalidState, "Claim cannot be approved without a successful refund")
		}
		c.RefundID = &refund.ID
	}
	c.decide(ClaimStatusApproved, decidedBy)
	c.AddDomainEvent(NewClaimApprovedEvent(c))
	return nil
}

// Reject turns the claim down
func (c *Claim) Reject(reason string, decidedBy *uuid.UUID) error {
	if !c.Status.CanTransitionTo(ClaimStatusRejected) {
		return shared.NewTransitionError("claim_status", string(c.Status), string(ClaimStatusRejected))
	}
	c.RejectReason = reason
	c.decide(ClaimStatusRejected, decidedBy)
	return nil
}

func (c *Claim) decide(status ClaimStatus, decidedBy *uuid.UUID) {
	now := time.Now()
	c.Status = status
	c.DecidedBy = decidedBy
	c.DecidedAt = &now
	c.UpdatedAt = now
}
