package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "PENDING"
	OrderStatusAwaitingValidation OrderStatus = "AWAITING_VALIDATION"
	OrderStatusNeedsAction        OrderStatus = "NEEDS_ACTION"
	OrderStatusDesigning          OrderStatus = "DESIGNING"
	OrderStatusReadyForPrint      OrderStatus = "READY_FOR_PRINT"
	OrderStatusPrinting           OrderStatus = "PRINTING"
	OrderStatusShipped            OrderStatus = "SHIPPED"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:            {},
	OrderStatusAwaitingValidation: {},
	OrderStatusNeedsAction:        {},
	OrderStatusDesigning:          {},
	OrderStatusReadyForPrint:      {},
	OrderStatusPrinting:           {},
	OrderStatusShipped:            {},
	OrderStatusDelivered:          {},
	OrderStatusCancelled:          {},
}

// ParseOrderStatus converts raw input into OrderStatus, rejecting unknown values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	_, ok := orderStatuses[status]
	return status, ok
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:            1,
	OrderStatusAwaitingValidation: 2,
	OrderStatusNeedsAction:        3,
	OrderStatusDesigning:          4,
	OrderStatusReadyForPrint:      5,
	OrderStatusPrinting:           6,
	OrderStatusShipped:            7,
	OrderStatusDelivered:          8,
}

// CanBecome reports whether a staff transition from s to target moves the
// order forward. CANCELLED is reachable from any non-terminal status; every
// other target must be strictly later in the lifecycle, so an order never
// returns to an earlier status.
func (s OrderStatus) CanBecome(target OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	return orderStatusRank[target] > orderStatusRank[s]
}

// Cancellable reports whether the customer may still cancel the order.
// Once printing has started the order is committed.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusPending, OrderStatusAwaitingValidation, OrderStatusNeedsAction,
		OrderStatusDesigning, OrderStatusReadyForPrint:
		return true
	}
	return false
}

// DesignPlan describes how the order's artwork is produced.
type DesignPlan string

const (
	DesignPlanPublic      DesignPlan = "PUBLIC"
	DesignPlanSemiPrivate DesignPlan = "SEMI_PRIVATE"
	DesignPlanPrivate     DesignPlan = "PRIVATE"
	DesignPlanOwnDesign   DesignPlan = "OWN_DESIGN"
)

var designPlans = map[DesignPlan]struct{}{
	DesignPlanPublic:      {},
	DesignPlanSemiPrivate: {},
	DesignPlanPrivate:     {},
	DesignPlanOwnDesign:   {},
}

// ParseDesignPlan converts raw input into DesignPlan, rejecting unknown values.
func ParseDesignPlan(s string) (DesignPlan, bool) {
	plan := DesignPlan(s)
	_, ok := designPlans[plan]
	return plan, ok
}

// RequiresUploadedDesign reports whether the customer must supply a design file.
func (p DesignPlan) RequiresUploadedDesign() bool {
	return p == DesignPlanOwnDesign
}

// Designed reports whether a staff designer produces the artwork for this plan.
func (p DesignPlan) Designed() bool {
	return p == DesignPlanSemiPrivate || p == DesignPlanPrivate
}

// Order describes a single print order with its pricing snapshot.
type Order struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	ProductID           uuid.UUID
	DesignPlan          DesignPlan
	Status              OrderStatus
	Quantity            int
	DesignFileURL       *string
	ValidationStatus    *ValidationStatus
	ValidationRequested bool
	DesignerID          *uuid.UUID
	ValidatorID         *uuid.UUID
	PrintShopID         *uuid.UUID
	RevisionCount       int
	MaxRevisions        *int
	DesignPrice         decimal.Decimal
	ValidationPrice     decimal.Decimal
	FixPrice            decimal.Decimal
	PrintPrice          decimal.Decimal
	TotalPrice          decimal.Decimal
	TrackingCode        *string
	ShippingAddress     *string
	CustomerNotes       *string
	AcceptedAt          *time.Time
	PrintedAt           *time.Time
	ShippedAt           *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NextStatusWhenPaid returns the status a fully paid PENDING order advances to.
func (o *Order) NextStatusWhenPaid() OrderStatus {
	if o.ValidationRequested {
		return OrderStatusAwaitingValidation
	}
	return OrderStatusReadyForPrint
}

// PriceFor returns the amount a payment of the given type must cover.
func (o *Order) PriceFor(t PaymentType) decimal.Decimal {
	switch t {
	case PaymentTypeValidation:
		return o.ValidationPrice
	case PaymentTypeDesign:
		return o.DesignPrice
	case PaymentTypeFix:
		return o.FixPrice
	case PaymentTypePrint:
		return o.PrintPrice
	default:
		return o.TotalPrice
	}
}
