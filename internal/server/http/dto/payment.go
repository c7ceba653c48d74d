package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest starts a payment for one of the order's line items.
type InitiatePaymentRequest struct {
	Type string `json:"type" binding:"required"`
}

// InitiatePaymentResponse returns the created payment and the gateway redirect.
type InitiatePaymentResponse struct {
	Payment     PaymentResponse `json:"payment"`
	RedirectURL string          `json:"redirect_url"`
}

// UploadReceiptRequest attaches a bank-transfer receipt image.
type UploadReceiptRequest struct {
	ReceiptImageURL string `json:"receipt_image_url" binding:"required"`
}

// RejectPaymentRequest carries the admin rejection reason.
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PaymentResponse describes one payment attempt.
type PaymentResponse struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Authority       string          `json:"authority"`
	RefID           *string         `json:"ref_id,omitempty"`
	ReceiptImageURL *string         `json:"receipt_image_url,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentSummaryResponse aggregates money state for one order.
type PaymentSummaryResponse struct {
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}
