package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/adapter/notify"
	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
)

// ValidationUseCase drives the pre-print validation flow.
type ValidationUseCase struct {
	validations repository.ValidationRepository
	orders      repository.OrderRepository
	users       repository.UserRepository
	events      EventPublisher
}

// NewValidationUseCase constructs ValidationUseCase.
func NewValidationUseCase(validations repository.ValidationRepository, orders repository.OrderRepository, users repository.UserRepository, events EventPublisher) *ValidationUseCase {
	return &ValidationUseCase{validations: validations, orders: orders, users: users, events: events}
}

// Request opts a pending order into validation. Its validation fee is already
// part of the total; this flips the flag and moves the order into the
// validator queue.
func (u *ValidationUseCase) Request(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrAccessDenied
	}

	updated, err := u.orders.MarkValidationRequested(ctx, orderID)
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "validation.requested", Payload: map[string]string{
		"order_id": orderID.String(),
		"user_id":  userID.String(),
	}})

	return updated, nil
}

// SubmitReportInput carries the validator verdict.
type SubmitReportInput struct {
	OrderID uuid.UUID
	Passed  bool
	Summary string
	FixCost decimal.Decimal
}

// SubmitReport records a validator verdict. A pass moves the order to
// READY_FOR_PRINT;
// a failure moves it to NEEDS_ACTION and folds the fix cost into the total.
func (u *ValidationUseCase) SubmitReport(ctx context.Context, validatorID uuid.UUID, in SubmitReportInput) (*model.ValidationReport, error) {
	if err := u.requireValidator(ctx, validatorID); err != nil {
		return nil, err
	}
	if in.FixCost.IsNegative() {
		return nil, domainErrors.ErrInvalidAmount
	}

	report, err := u.validations.SubmitReport(ctx, repository.SubmitReport{
		OrderID:     in.OrderID,
		ValidatorID: validatorID,
		Passed:      in.Passed,
		Summary:     in.Summary,
		FixCost:     in.FixCost,
	})
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "validation.report_submitted", Payload: map[string]string{
		"order_id":     in.OrderID.String(),
		"validator_id": validatorID.String(),
		"passed":       boolString(in.Passed),
		"fix_cost":     in.FixCost.String(),
	}})

	return report, nil
}

// ListReports returns an order's validation history, newest first.
func (u *ValidationUseCase) ListReports(ctx context.Context, orderID, userID uuid.UUID) ([]model.ValidationReport, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		usr, err := u.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if usr.Role != model.UserRoleAdmin && usr.Role != model.UserRoleValidator {
			return nil, domainErrors.ErrNotFound
		}
	}
	return u.validations.ListByOrder(ctx, orderID)
}

func (u *ValidationUseCase) requireValidator(ctx context.Context, userID uuid.UUID) error {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if usr.Role != model.UserRoleValidator {
		return domainErrors.ErrAccessDenied
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
