package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/printflow/printflow/internal/adapter/gateway"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
	"github.com/printflow/printflow/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (uuid.UUID, error)
	CreateStaff(ctx context.Context, adminID uuid.UUID, login, password string, role model.UserRole) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in usecase.CreateOrderInput) (*model.Order, error)
	Order(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
	Orders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	PrintShopQueue(ctx context.Context, limit int) ([]model.Order, error)
	PrintShopOrders(ctx context.Context, printShopID uuid.UUID) ([]model.Order, error)
	AcceptOrder(ctx context.Context, orderID, printShopID uuid.UUID) (*model.Order, error)
	SubmitDesign(ctx context.Context, orderID, designerID uuid.UUID, designFileURL string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, change repository.StatusChange) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
}

// PaymentFacade encapsulates payment operations exposed via HTTP.
type PaymentFacade interface {
	InitiatePayment(ctx context.Context, userID, orderID uuid.UUID, paymentType model.PaymentType) (*model.Payment, *gateway.Session, error)
	PaymentCallback(ctx context.Context, authority, status string, refID, cardPan *string) (*model.Payment, error)
	UploadReceipt(ctx context.Context, paymentID, userID uuid.UUID, receiptURL string) (*model.Payment, error)
	ApprovePayment(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error)
	RejectPayment(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*model.Payment, error)
	ResetPayment(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error)
	Payment(ctx context.Context, paymentID, userID uuid.UUID) (*model.Payment, error)
	OrderPayments(ctx context.Context, orderID, userID uuid.UUID) ([]model.Payment, error)
	PaymentSummary(ctx context.Context, orderID, userID uuid.UUID) (*model.PaymentSummary, error)
	PendingApprovals(ctx context.Context, adminID uuid.UUID, limit int) ([]model.Payment, error)
}

// ValidationFacade encapsulates validation flow operations exposed via HTTP.
type ValidationFacade interface {
	RequestValidation(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
	SubmitValidationReport(ctx context.Context, validatorID uuid.UUID, in usecase.SubmitReportInput) (*model.ValidationReport, error)
	ValidationReports(ctx context.Context, orderID, userID uuid.UUID) ([]model.ValidationReport, error)
}

// PrintFlowFacade aggregates the full set of operations used across handlers.
type PrintFlowFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	ValidationFacade
}
