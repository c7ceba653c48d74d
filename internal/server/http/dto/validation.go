package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitReportRequest carries a validator verdict for an order.
type SubmitReportRequest struct {
	Passed  bool            `json:"passed"`
	Summary string          `json:"summary" binding:"required"`
	FixCost decimal.Decimal `json:"fix_cost"`
}

// ValidationReportResponse describes one validation verdict.
type ValidationReportResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ValidatorID string          `json:"validator_id"`
	Passed      bool            `json:"passed"`
	Summary     string          `json:"summary"`
	FixCost     decimal.Decimal `json:"fix_cost"`
	CreatedAt   time.Time       `json:"created_at"`
}
