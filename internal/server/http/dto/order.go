package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest describes a new order payload.
type CreateOrderRequest struct {
	ProductID           string  `json:"product_id" binding:"required"`
	DesignPlan          string  `json:"design_plan" binding:"required"`
	Quantity            int     `json:"quantity" binding:"required"`
	ValidationRequested bool    `json:"validation_requested"`
	DesignFileURL       *string `json:"design_file_url,omitempty"`
	ShippingAddress     *string `json:"shipping_address,omitempty"`
	CustomerNotes       *string `json:"customer_notes,omitempty"`
}

// SubmitDesignRequest carries the designer's finished artwork.
type SubmitDesignRequest struct {
	DesignFileURL string `json:"design_file_url" binding:"required"`
}

// UpdateOrderStatusRequest describes a staff-driven status transition.
type UpdateOrderStatusRequest struct {
	Status       string  `json:"status" binding:"required"`
	TrackingCode *string `json:"tracking_code,omitempty"`
}

// OrderResponse describes an order with its pricing snapshot.
type OrderResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	DesignPlan          string          `json:"design_plan"`
	Status              string          `json:"status"`
	Quantity            int             `json:"quantity"`
	DesignFileURL       *string         `json:"design_file_url,omitempty"`
	ValidationStatus    *string         `json:"validation_status,omitempty"`
	ValidationRequested bool            `json:"validation_requested"`
	RevisionCount       int             `json:"revision_count"`
	MaxRevisions        *int            `json:"max_revisions,omitempty"`
	DesignPrice         decimal.Decimal `json:"design_price"`
	ValidationPrice     decimal.Decimal `json:"validation_price"`
	FixPrice            decimal.Decimal `json:"fix_price"`
	PrintPrice          decimal.Decimal `json:"print_price"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	TrackingCode        *string         `json:"tracking_code,omitempty"`
	ShippingAddress     *string         `json:"shipping_address,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
