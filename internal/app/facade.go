package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/printflow/printflow/internal/adapter/gateway"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
	"github.com/printflow/printflow/internal/usecase"
)

// PrintFlowFacade is the single entry point the HTTP layer talks to.
type PrintFlowFacade struct {
	auth        *usecase.AuthUseCase
	orders      *usecase.OrderUseCase
	payments    *usecase.PaymentUseCase
	validations *usecase.ValidationUseCase
}

func NewPrintFlowFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase, validations *usecase.ValidationUseCase) *PrintFlowFacade {
	return &PrintFlowFacade{auth: auth, orders: orders, payments: payments, validations: validations}
}

func (f *PrintFlowFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *PrintFlowFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *PrintFlowFacade) ParseToken(token string) (uuid.UUID, error) {
	return f.auth.ParseToken(token)
}

func (f *PrintFlowFacade) UserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

func (f *PrintFlowFacade) CreateStaff(ctx context.Context, adminID uuid.UUID, login, password string, role model.UserRole) (*model.User, error) {
	return f.auth.CreateStaff(ctx, adminID, login, password, role)
}

func (f *PrintFlowFacade) CreateOrder(ctx context.Context, userID uuid.UUID, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.Create(ctx, userID, in)
}

func (f *PrintFlowFacade) Order(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	return f.orders.GetForUser(ctx, orderID, userID)
}

func (f *PrintFlowFacade) Orders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *PrintFlowFacade) PrintShopQueue(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.PrintShopQueue(ctx, limit)
}

func (f *PrintFlowFacade) PrintShopOrders(ctx context.Context, printShopID uuid.UUID) ([]model.Order, error) {
	return f.orders.ListByPrintShop(ctx, printShopID)
}

func (f *PrintFlowFacade) AcceptOrder(ctx context.Context, orderID, printShopID uuid.UUID) (*model.Order, error) {
	return f.orders.AcceptByPrintShop(ctx, orderID, printShopID)
}

func (f *PrintFlowFacade) SubmitDesign(ctx context.Context, orderID, designerID uuid.UUID, designFileURL string) (*model.Order, error) {
	return f.orders.SubmitDesign(ctx, orderID, designerID, designFileURL)
}

func (f *PrintFlowFacade) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, change repository.StatusChange) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, orderID, change)
}

func (f *PrintFlowFacade) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	return f.orders.Cancel(ctx, orderID, userID)
}

func (f *PrintFlowFacade) InitiatePayment(ctx context.Context, userID, orderID uuid.UUID, paymentType model.PaymentType) (*model.Payment, *gateway.Session, error) {
	return f.payments.Initiate(ctx, userID, orderID, paymentType)
}

func (f *PrintFlowFacade) PaymentCallback(ctx context.Context, authority, status string, refID, cardPan *string) (*model.Payment, error) {
	return f.payments.HandleCallback(ctx, authority, status, refID, cardPan)
}

func (f *PrintFlowFacade) UploadReceipt(ctx context.Context, paymentID, userID uuid.UUID, receiptURL string) (*model.Payment, error) {
	return f.payments.UploadReceipt(ctx, paymentID, userID, receiptURL)
}

func (f *PrintFlowFacade) ApprovePayment(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error) {
	return f.payments.Approve(ctx, paymentID, adminID)
}

func (f *PrintFlowFacade) RejectPayment(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*model.Payment, error) {
	return f.payments.Reject(ctx, paymentID, adminID, reason)
}

func (f *PrintFlowFacade) ResetPayment(ctx context.Context, paymentID, adminID uuid.UUID) (*model.Payment, error) {
	return f.payments.ResetToPending(ctx, paymentID, adminID)
}

func (f *PrintFlowFacade) Payment(ctx context.Context, paymentID, userID uuid.UUID) (*model.Payment, error) {
	return f.payments.GetForUser(ctx, paymentID, userID)
}

func (f *PrintFlowFacade) OrderPayments(ctx context.Context, orderID, userID uuid.UUID) ([]model.Payment, error) {
	return f.payments.ListByOrder(ctx, orderID, userID)
}

func (f *PrintFlowFacade) PaymentSummary(ctx context.Context, orderID, userID uuid.UUID) (*model.PaymentSummary, error) {
	return f.payments.Summary(ctx, orderID, userID)
}

func (f *PrintFlowFacade) PendingApprovals(ctx context.Context, adminID uuid.UUID, limit int) ([]model.Payment, error) {
	return f.payments.PendingApprovals(ctx, adminID, limit)
}

func (f *PrintFlowFacade) RequestValidation(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	return f.validations.Request(ctx, orderID, userID)
}

func (f *PrintFlowFacade) SubmitValidationReport(ctx context.Context, validatorID uuid.UUID, in usecase.SubmitReportInput) (*model.ValidationReport, error) {
	return f.validations.SubmitReport(ctx, validatorID, in)
}

func (f *PrintFlowFacade) ValidationReports(ctx context.Context, orderID, userID uuid.UUID) ([]model.ValidationReport, error) {
	return f.validations.ListReports(ctx, orderID, userID)
}
