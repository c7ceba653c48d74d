package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/domain/model"
)

// CreateOrder names every field an order-creation transition may set.
type CreateOrder struct {
	UserID              uuid.UUID
	ProductID           uuid.UUID
	DesignPlan          model.DesignPlan
	Status              model.OrderStatus
	Quantity            int
	DesignFileURL       *string
	ValidationRequested bool
	ShippingAddress     *string
	CustomerNotes       *string
	DesignPrice         decimal.Decimal
	ValidationPrice     decimal.Decimal
	FixPrice            decimal.Decimal
	PrintPrice          decimal.Decimal
	TotalPrice          decimal.Decimal
	MaxRevisions        *int
}

// StatusChange is a staff-driven status transition. Only the timestamp matching
// the new status is stamped; TrackingCode applies to SHIPPED only.
type StatusChange struct {
	Status       model.OrderStatus
	TrackingCode *string
}

// SubmitDesign carries a designer's finished artwork for an order in design.
type SubmitDesign struct {
	OrderID       uuid.UUID
	DesignerID    uuid.UUID
	DesignFileURL string
}

// OrderRepository describes persistence operations with orders.
// Guards that must hold under concurrency are enforced inside the store's
// transaction, not by callers.
type OrderRepository interface {
	Create(ctx context.Context, cmd CreateOrder) (*model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListReadyForPrint(ctx context.Context, limit int) ([]model.Order, error)
	ListByPrintShop(ctx context.Context, printShopID uuid.UUID) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, change StatusChange) (*model.Order, error)
	SubmitDesign(ctx context.Context, cmd SubmitDesign) (*model.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	AcceptByPrintShop(ctx context.Context, orderID, printShopID uuid.UUID) (*model.Order, error)
	MarkValidationRequested(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}
