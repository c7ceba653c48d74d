package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/domain/model"
)

// CreatePayment names every field a payment-initiation transition may set.
// Amount is immutable afterwards.
type CreatePayment struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	Type        model.PaymentType
	Amount      decimal.Decimal
	Authority   string
	Description string
}

// CallbackResult carries the processor's verdict for one correlation token.
type CallbackResult struct {
	Success bool
	RefID   *string
	CardPan *string
}

// PaymentRepository describes persistence operations with payments.
//
// ApplyCallback and Approve are the only ways a payment reaches SUCCESS; both
// run the reconciliation sum-and-advance for the owning order inside the same
// transaction, serialized on the payment row.
type PaymentRepository interface {
	Create(ctx context.Context, cmd CreatePayment) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByAuthority(ctx context.Context, authority string) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)
	ListAwaitingApproval(ctx context.Context, limit int) ([]model.Payment, error)
	Summary(ctx context.Context, orderID uuid.UUID) (*model.PaymentSummary, error)

	// ApplyCallback flips a PENDING payment per the processor result. The bool
	// reports whether the transition was applied; a non-PENDING payment is
	// returned unchanged with false, making redelivery a no-op.
	ApplyCallback(ctx context.Context, authority string, result CallbackResult) (*model.Payment, bool, error)

	AttachReceipt(ctx context.Context, paymentID uuid.UUID, receiptURL string) (*model.Payment, error)
	Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error)
	Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*model.Payment, error)
	ResetToPending(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)
}
