package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/printflow/printflow/internal/adapter/gateway"
	"github.com/printflow/printflow/internal/adapter/notify"
	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
)

// PaymentUseCase encapsulates the payment lifecycle and its coupling to orders.
type PaymentUseCase struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	gateway  gateway.Client
	events   EventPublisher
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(payments repository.PaymentRepository, orders repository.OrderRepository, users repository.UserRepository, gw gateway.Client, events EventPublisher) *PaymentUseCase {
	return &PaymentUseCase{payments: payments, orders: orders, users: users, gateway: gw, events: events}
}

// Initiate creates a PENDING payment for one of the order's line items and
// returns the processor redirect session. The amount is fixed here; a retry
// after failure initiates a fresh payment instead of mutating this one.
func (u *PaymentUseCase) Initiate(ctx context.Context, userID, orderID uuid.UUID, paymentType model.PaymentType) (*model.Payment, *gateway.Session, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, domainErrors.ErrAccessDenied
	}

	amount := order.PriceFor(paymentType)
	if !amount.IsPositive() {
		return nil, nil, domainErrors.ErrInvalidAmount
	}

	session, err := u.gateway.CreateSession(ctx, amount, string(paymentType))
	if err != nil {
		return nil, nil, err
	}

	payment, err := u.payments.Create(ctx, repository.CreatePayment{
		OrderID:     orderID,
		UserID:      userID,
		Type:        paymentType,
		Amount:      amount,
		Authority:   session.Authority,
		Description: fmt.Sprintf("%s payment for order %s", paymentType, orderID),
	})
	if err != nil {
		return nil, nil, err
	}

	u.events.Enqueue(notify.Event{Type: "payment.initiated", Payload: map[string]string{
		"payment_id": payment.ID.String(),
		"order_id":   orderID.String(),
		"user_id":    userID.String(),
		"amount":     amount.String(),
		"type":       string(paymentType),
	}})

	return payment, session, nil
}

// HandleCallback applies the processor verdict for a correlation token.
// Result code "OK" (case-insensitive) means success; anything else fails the
// payment. Safe under at-least-once delivery: a settled payment is returned
// unchanged.
func (u *PaymentUseCase) HandleCallback(ctx context.Context, authority, resultCode string, refID, cardPan *string) (*model.Payment, error) {
	result := repository.CallbackResult{
		Success: strings.EqualFold(resultCode, "OK"),
		RefID:   refID,
		CardPan: cardPan,
	}

	payment, applied, err := u.payments.ApplyCallback(ctx, authority, result)
	if err != nil {
		return nil, err
	}

	if applied {
		u.events.Enqueue(notify.Event{Type: "payment.callback", Payload: map[string]string{
			"payment_id": payment.ID.String(),
			"order_id":   payment.OrderID.String(),
			"status":     string(payment.Status),
		}})
	}

	return payment, nil
}

// UploadReceipt attaches a bank-transfer receipt and queues the payment for
// admin review.
func (u *PaymentUseCase) UploadReceipt(ctx context.Context, paymentID, userID uuid.UUID, receiptURL string) (*model.Payment, error) {
	payment, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, domainErrors.ErrAccessDenied
	}

	updated, err := u.payments.AttachReceipt(ctx, paymentID, receiptURL)
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "payment.receipt_uploaded", Payload: map[string]string{
		"payment_id": paymentID.String(),
		"order_id":   payment.OrderID.String(),
		"user_id":    userID.String(),
	}})

	return updated, nil
}

// Approve marks a reviewed receipt as paid. Admin only; the payment must be
// awaiting approval.
func (u *PaymentUseCase) Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	payment, err := u.payments.Approve(ctx, paymentID, adminID)
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "payment.approved", Payload: map[string]string{
		"payment_id": paymentID.String(),
		"order_id":   payment.OrderID.String(),
		"admin_id":   adminID.String(),
		"amount":     payment.Amount.String(),
	}})

	return payment, nil
}

// Reject fails a reviewed receipt with a reason the customer can act on.
func (u *PaymentUseCase) Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*model.Payment, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	payment, err := u.payments.Reject(ctx, paymentID, adminID, reason)
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "payment.rejected", Payload: map[string]string{
		"payment_id": paymentID.String(),
		"order_id":   payment.OrderID.String(),
		"admin_id":   adminID.String(),
		"reason":     reason,
	}})

	return payment, nil
}

// ResetToPending lets the customer retry after a rejection: receipt, rejection
// and approval fields are cleared.
func (u *PaymentUseCase) ResetToPending(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return u.payments.ResetToPending(ctx, paymentID)
}

// GetForUser returns the payment if owned by the user; admins see all.
func (u *PaymentUseCase) GetForUser(ctx context.Context, paymentID, userID uuid.UUID) (*model.Payment, error) {
	payment, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		if err := u.requireAdmin(ctx, userID); err != nil {
			return nil, domainErrors.ErrNotFound
		}
	}
	return payment, nil
}

// ListByOrder returns the order's payments, newest first.
func (u *PaymentUseCase) ListByOrder(ctx context.Context, orderID, userID uuid.UUID) ([]model.Payment, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		if err := u.requireAdmin(ctx, userID); err != nil {
			return nil, domainErrors.ErrNotFound
		}
	}
	return u.payments.ListByOrder(ctx, orderID)
}

// Summary reports how much of the order is paid and how much is in flight.
func (u *PaymentUseCase) Summary(ctx context.Context, orderID, userID uuid.UUID) (*model.PaymentSummary, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		if err := u.requireAdmin(ctx, userID); err != nil {
			return nil, domainErrors.ErrNotFound
		}
	}
	return u.payments.Summary(ctx, orderID)
}

// PendingApprovals returns the admin review queue, oldest first.
func (u *PaymentUseCase) PendingApprovals(ctx context.Context, adminID uuid.UUID, limit int) ([]model.Payment, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.payments.ListAwaitingApproval(ctx, limit)
}

func (u *PaymentUseCase) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if usr.Role != model.UserRoleAdmin {
		return domainErrors.ErrAccessDenied
	}
	return nil
}
