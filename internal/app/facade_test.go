package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
	testhelpers "github.com/printflow/printflow/internal/test"
	"github.com/printflow/printflow/internal/usecase"
)

type facadeFixture struct {
	facade   *PrintFlowFacade
	ledger   *testhelpers.MemoryLedger
	users    *testhelpers.UserRepositoryStub
	products *testhelpers.ProductRepositoryStub
	gateway  *testhelpers.GatewayStub
	events   *testhelpers.EventRecorder
	product  *model.Product
}

func newFacadeFixture() *facadeFixture {
	ledger := testhelpers.NewMemoryLedger()
	users := testhelpers.NewUserRepositoryStub()
	products := testhelpers.NewProductRepositoryStub()
	gw := &testhelpers.GatewayStub{}
	events := &testhelpers.EventRecorder{}

	authUC := usecase.NewAuthUseCase(users, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
	orderUC := usecase.NewOrderUseCase(ledger.OrderRepo(), products, users, events)
	paymentUC := usecase.NewPaymentUseCase(ledger.PaymentRepo(), ledger.OrderRepo(), users, gw, events)
	validationUC := usecase.NewValidationUseCase(ledger.ValidationRepo(), ledger.OrderRepo(), users, events)

	return &facadeFixture{
		facade:   NewPrintFlowFacade(authUC, orderUC, paymentUC, validationUC),
		ledger:   ledger,
		users:    users,
		products: products,
		gateway:  gw,
		events:   events,
		product:  products.Seed("flyer", decimal.NewFromInt(100000), true),
	}
}

func TestFacadeAuth(t *testing.T) {
	f := newFacadeFixture()
	ctx := context.Background()

	token, err := f.facade.Register(ctx, "user", "pass")
	if err != nil || token == "" {
		t.Fatalf("register failed: token=%q err=%v", token, err)
	}

	stored, err := f.users.GetByLogin(ctx, "user")
	if err != nil || stored.Role != model.UserRoleCustomer {
		t.Fatalf("unexpected stored user: %+v err=%v", stored, err)
	}

	if _, err := f.facade.Authenticate(ctx, "user", "pass"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	id, err := f.facade.ParseToken("token:" + stored.ID.String())
	if err != nil || id != stored.ID {
		t.Fatalf("parse token: id=%s err=%v", id, err)
	}

	if _, err := f.facade.UserByID(ctx, stored.ID); err != nil {
		t.Fatalf("user lookup failed: %v", err)
	}

	admin := f.users.Seed("admin", model.UserRoleAdmin)
	staff, err := f.facade.CreateStaff(ctx, admin.ID, "checker", "pw", model.UserRoleValidator)
	if err != nil || staff.Role != model.UserRoleValidator {
		t.Fatalf("create staff: %+v err=%v", staff, err)
	}
}

func TestFacadeOrderLifecycle(t *testing.T) {
	f := newFacadeFixture()
	ctx := context.Background()
	customer := f.users.Seed("customer", model.UserRoleCustomer)
	shop := f.users.Seed("shop", model.UserRolePrintShop)

	order, err := f.facade.CreateOrder(ctx, customer.ID, usecase.CreateOrderInput{
		ProductID:  f.product.ID,
		DesignPlan: model.DesignPlanPublic,
		Quantity:   1,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := f.facade.Order(ctx, order.ID, customer.ID); err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	listed, err := f.facade.Orders(ctx, customer.ID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list orders: %v err=%v", listed, err)
	}

	payment, session, err := f.facade.InitiatePayment(ctx, customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil || session.RedirectURL == "" {
		t.Fatalf("initiate payment: %+v err=%v", payment, err)
	}

	settled, err := f.facade.PaymentCallback(ctx, payment.Authority, "OK", nil, nil)
	if err != nil || settled.Status != model.PaymentStatusSuccess {
		t.Fatalf("callback: %+v err=%v", settled, err)
	}

	queue, err := f.facade.PrintShopQueue(ctx, 0)
	if err != nil || len(queue) != 1 {
		t.Fatalf("queue: %v err=%v", queue, err)
	}

	accepted, err := f.facade.AcceptOrder(ctx, queue[0].ID, shop.ID)
	if err != nil || accepted.Status != model.OrderStatusPrinting {
		t.Fatalf("accept: %+v err=%v", accepted, err)
	}

	mine, err := f.facade.PrintShopOrders(ctx, shop.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("print shop orders: %v err=%v", mine, err)
	}

	tracking := "TRK-1"
	shipped, err := f.facade.UpdateOrderStatus(ctx, order.ID, repository.StatusChange{
		Status: model.OrderStatusShipped, TrackingCode: &tracking,
	})
	if err != nil || shipped.Status != model.OrderStatusShipped {
		t.Fatalf("update status: %+v err=%v", shipped, err)
	}

	if _, err := f.facade.CancelOrder(ctx, order.ID, customer.ID); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("expected invalid state on cancelling shipped order, got %v", err)
	}
}

func TestFacadeReceiptApproval(t *testing.T) {
	f := newFacadeFixture()
	ctx := context.Background()
	customer := f.users.Seed("customer", model.UserRoleCustomer)
	admin := f.users.Seed("admin", model.UserRoleAdmin)

	order, err := f.facade.CreateOrder(ctx, customer.ID, usecase.CreateOrderInput{
		ProductID:  f.product.ID,
		DesignPlan: model.DesignPlanPublic,
		Quantity:   1,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	payment, _, err := f.facade.InitiatePayment(ctx, customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil {
		t.Fatalf("initiate payment failed: %v", err)
	}

	uploaded, err := f.facade.UploadReceipt(ctx, payment.ID, customer.ID, "https://cdn.test/r.jpg")
	if err != nil || uploaded.Status != model.PaymentStatusAwaitingApproval {
		t.Fatalf("upload receipt: %+v err=%v", uploaded, err)
	}

	pending, err := f.facade.PendingApprovals(ctx, admin.ID, 0)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending approvals: %v err=%v", pending, err)
	}

	rejected, err := f.facade.RejectPayment(ctx, payment.ID, admin.ID, "blurry")
	if err != nil || rejected.Status != model.PaymentStatusFailed {
		t.Fatalf("reject: %+v err=%v", rejected, err)
	}

	reset, err := f.facade.ResetPayment(ctx, payment.ID, admin.ID)
	if err != nil || reset.Status != model.PaymentStatusPending {
		t.Fatalf("reset: %+v err=%v", reset, err)
	}

	if _, err := f.facade.UploadReceipt(ctx, payment.ID, customer.ID, "https://cdn.test/r2.jpg"); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	approved, err := f.facade.ApprovePayment(ctx, payment.ID, admin.ID)
	if err != nil || approved.Status != model.PaymentStatusSuccess {
		t.Fatalf("approve: %+v err=%v", approved, err)
	}

	summary, err := f.facade.PaymentSummary(ctx, order.ID, customer.ID)
	if err != nil || !summary.TotalPaid.Equal(payment.Amount) {
		t.Fatalf("summary: %+v err=%v", summary, err)
	}

	if _, err := f.facade.Payment(ctx, payment.ID, customer.ID); err != nil {
		t.Fatalf("payment lookup failed: %v", err)
	}
	payments, err := f.facade.OrderPayments(ctx, order.ID, customer.ID)
	if err != nil || len(payments) != 1 {
		t.Fatalf("order payments: %v err=%v", payments, err)
	}
}

func TestFacadeValidation(t *testing.T) {
	f := newFacadeFixture()
	ctx := context.Background()
	customer := f.users.Seed("customer", model.UserRoleCustomer)
	validator := f.users.Seed("validator", model.UserRoleValidator)

	order, err := f.facade.CreateOrder(ctx, customer.ID, usecase.CreateOrderInput{
		ProductID:  f.product.ID,
		DesignPlan: model.DesignPlanPublic,
		Quantity:   1,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	requested, err := f.facade.RequestValidation(ctx, order.ID, customer.ID)
	if err != nil || !requested.ValidationRequested {
		t.Fatalf("request validation: %+v err=%v", requested, err)
	}

	report, err := f.facade.SubmitValidationReport(ctx, validator.ID, usecase.SubmitReportInput{
		OrderID: order.ID, Passed: true, Summary: "ok", FixCost: decimal.Zero,
	})
	if err != nil || !report.Passed {
		t.Fatalf("submit report: %+v err=%v", report, err)
	}

	reports, err := f.facade.ValidationReports(ctx, order.ID, customer.ID)
	if err != nil || len(reports) != 1 {
		t.Fatalf("list reports: %v err=%v", reports, err)
	}

	if _, err := f.facade.ValidationReports(ctx, uuid.New(), customer.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}
