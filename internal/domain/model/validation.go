package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationStatus describes the outcome of a design validation.
type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "PENDING"
	ValidationStatusPassed  ValidationStatus = "PASSED"
	ValidationStatusFailed  ValidationStatus = "FAILED"
	ValidationStatusFixed   ValidationStatus = "FIXED"
)

var validationStatuses = map[ValidationStatus]struct{}{
	ValidationStatusPending: {},
	ValidationStatusPassed:  {},
	ValidationStatusFailed:  {},
	ValidationStatusFixed:   {},
}

// ParseValidationStatus converts raw input into ValidationStatus, rejecting unknown values.
func ParseValidationStatus(s string) (ValidationStatus, bool) {
	status := ValidationStatus(s)
	_, ok := validationStatuses[status]
	return status, ok
}

// ValidationReport records a validator's verdict on an order's design.
type ValidationReport struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ValidatorID uuid.UUID
	Passed      bool
	Summary     string
	FixCost     decimal.Decimal
	CreatedAt   time.Time
}
