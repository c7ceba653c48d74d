package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/domain/model"
)

// SubmitReport records a validation verdict and, in the same transaction,
// moves the order and adds any fix cost to its total.
type SubmitReport struct {
	OrderID     uuid.UUID
	ValidatorID uuid.UUID
	Passed      bool
	Summary     string
	FixCost     decimal.Decimal
}

// ValidationRepository stores validation reports.
type ValidationRepository interface {
	SubmitReport(ctx context.Context, cmd SubmitReport) (*model.ValidationReport, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.ValidationReport, error)
}
