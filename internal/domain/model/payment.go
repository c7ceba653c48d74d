package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus describes the money lifecycle of a single payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending          PaymentStatus = "PENDING"
	PaymentStatusAwaitingApproval PaymentStatus = "AWAITING_APPROVAL"
	PaymentStatusSuccess          PaymentStatus = "SUCCESS"
	PaymentStatusFailed           PaymentStatus = "FAILED"
)

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPending:          {},
	PaymentStatusAwaitingApproval: {},
	PaymentStatusSuccess:          {},
	PaymentStatusFailed:           {},
}

// ParsePaymentStatus converts raw input into PaymentStatus, rejecting unknown values.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	status := PaymentStatus(s)
	_, ok := paymentStatuses[status]
	return status, ok
}

// ReceiptUploadable reports whether a bank-transfer receipt may be attached.
// SUCCESS is excluded: the amount has already been reconciled.
func (s PaymentStatus) ReceiptUploadable() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusFailed, PaymentStatusAwaitingApproval:
		return true
	}
	return false
}

// PaymentType names the line item a payment covers.
type PaymentType string

const (
	PaymentTypeValidation   PaymentType = "VALIDATION"
	PaymentTypeDesign       PaymentType = "DESIGN"
	PaymentTypeFix          PaymentType = "FIX"
	PaymentTypePrint        PaymentType = "PRINT"
	PaymentTypeSubscription PaymentType = "SUBSCRIPTION"
)

var paymentTypes = map[PaymentType]struct{}{
	PaymentTypeValidation:   {},
	PaymentTypeDesign:       {},
	PaymentTypeFix:          {},
	PaymentTypePrint:        {},
	PaymentTypeSubscription: {},
}

// ParsePaymentType converts raw input into PaymentType, rejecting unknown values.
func ParsePaymentType(s string) (PaymentType, bool) {
	t := PaymentType(s)
	_, ok := paymentTypes[t]
	return t, ok
}

// Payment represents one monetary attempt tied to exactly one order.
// Amount is fixed at initiation; a retry creates a new Payment row.
type Payment struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	UserID          uuid.UUID
	Type            PaymentType
	Amount          decimal.Decimal
	Status          PaymentStatus
	Authority       string
	RefID           *string
	CardPan         *string
	ReceiptImageURL *string
	RejectionReason *string
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	PaidAt          *time.Time
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PaymentSummary aggregates money state for one order.
type PaymentSummary struct {
	TotalPaid    decimal.Decimal
	TotalPending decimal.Decimal
}
