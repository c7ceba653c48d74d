package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	testhelpers "github.com/printflow/printflow/internal/test"
)

type paymentFixture struct {
	orders   *OrderUseCase
	payments *PaymentUseCase
	ledger   *testhelpers.MemoryLedger
	users    *testhelpers.UserRepositoryStub
	gateway  *testhelpers.GatewayStub
	events   *testhelpers.EventRecorder
	customer *model.User
	admin    *model.User
	product  *model.Product
}

func newPaymentFixture() *paymentFixture {
	ledger := testhelpers.NewMemoryLedger()
	users := testhelpers.NewUserRepositoryStub()
	products := testhelpers.NewProductRepositoryStub()
	gw := &testhelpers.GatewayStub{}
	events := &testhelpers.EventRecorder{}

	customer := users.Seed("customer", model.UserRoleCustomer)
	admin := users.Seed("admin", model.UserRoleAdmin)
	product := products.Seed("poster", decimal.NewFromInt(200000), true)

	return &paymentFixture{
		orders:   NewOrderUseCase(ledger.OrderRepo(), products, users, events),
		payments: NewPaymentUseCase(ledger.PaymentRepo(), ledger.OrderRepo(), users, gw, events),
		ledger:   ledger,
		users:    users,
		gateway:  gw,
		events:   events,
		customer: customer,
		admin:    admin,
		product:  product,
	}
}

func (f *paymentFixture) createOrder(t *testing.T, validation bool) *model.Order {
	t.Helper()
	order, err := f.orders.Create(context.Background(), f.customer.ID, CreateOrderInput{
		ProductID:           f.product.ID,
		DesignPlan:          model.DesignPlanPublic,
		Quantity:            1,
		ValidationRequested: validation,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestPaymentInitiate(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	payment, session, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypePrint)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if payment.Status != model.PaymentStatusPending {
		t.Fatalf("new payment must be PENDING, got %s", payment.Status)
	}
	if !payment.Amount.Equal(order.PrintPrice) {
		t.Fatalf("amount = %s, want %s", payment.Amount, order.PrintPrice)
	}
	if payment.Authority != session.Authority {
		t.Fatal("payment must carry the session authority")
	}
	if session.RedirectURL == "" {
		t.Fatal("session must carry a redirect URL")
	}
}

func TestPaymentInitiateGuards(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	stranger := f.users.Seed("stranger", model.UserRoleCustomer)
	if _, _, err := f.payments.Initiate(ctx, stranger.ID, order.ID, model.PaymentTypePrint); !errors.Is(err, domainErrors.ErrAccessDenied) {
		t.Fatalf("foreign initiate: got %v", err)
	}

	// No validation requested, so the validation line item is zero.
	if _, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeValidation); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("zero amount initiate: got %v", err)
	}
}

func TestPaymentCallbackAdvancesOrder(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	payment, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	refID := "ref-1"
	settled, err := f.payments.HandleCallback(ctx, payment.Authority, "OK", &refID, nil)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if settled.Status != model.PaymentStatusSuccess || settled.PaidAt == nil {
		t.Fatalf("unexpected payment after callback: %+v", settled)
	}

	updated, err := f.orders.GetForUser(ctx, order.ID, f.customer.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if updated.Status != model.OrderStatusReadyForPrint {
		t.Fatalf("fully paid order must advance, got %s", updated.Status)
	}
}

func TestPaymentCallbackPartialDoesNotAdvance(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, true)

	// Flip back to PENDING to observe the advance from the payment side: the
	// order waits in validation first, so force the pre-payment state.
	f.ledger.Orders[order.ID].Status = model.OrderStatusPending

	payment, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeValidation)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if _, err := f.payments.HandleCallback(ctx, payment.Authority, "OK", nil, nil); err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	updated, _ := f.orders.GetForUser(ctx, order.ID, f.customer.ID)
	if updated.Status != model.OrderStatusPending {
		t.Fatalf("partially paid order must stay PENDING, got %s", updated.Status)
	}

	// Pay the rest; validation was requested, so the advance targets
	// AWAITING_VALIDATION.
	rest, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypePrint)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := f.payments.HandleCallback(ctx, rest.Authority, "ok", nil, nil); err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	updated, _ = f.orders.GetForUser(ctx, order.ID, f.customer.ID)
	if updated.Status != model.OrderStatusAwaitingValidation {
		t.Fatalf("fully paid order must await validation, got %s", updated.Status)
	}
}

func TestPaymentCallbackIdempotent(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	payment, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	refID := "ref-first"
	first, err := f.payments.HandleCallback(ctx, payment.Authority, "OK", &refID, nil)
	if err != nil {
		t.Fatalf("first callback failed: %v", err)
	}

	// Redelivery with a contradictory verdict is a no-op.
	second, err := f.payments.HandleCallback(ctx, payment.Authority, "NOK", nil, nil)
	if err != nil {
		t.Fatalf("second callback failed: %v", err)
	}
	if second.Status != model.PaymentStatusSuccess {
		t.Fatalf("settled payment must stay SUCCESS, got %s", second.Status)
	}
	if second.RefID == nil || *second.RefID != *first.RefID {
		t.Fatal("settled payment must be returned unchanged")
	}

	// Only the applied transition emits a callback event.
	callbackEvents := 0
	for _, typ := range f.events.Types() {
		if typ == "payment.callback" {
			callbackEvents++
		}
	}
	if callbackEvents != 1 {
		t.Fatalf("expected exactly one callback event, got %d", callbackEvents)
	}
}

func TestPaymentCallbackFailure(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	payment, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	failed, err := f.payments.HandleCallback(ctx, payment.Authority, "NOK", nil, nil)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if failed.Status != model.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", failed.Status)
	}

	updated, _ := f.orders.GetForUser(ctx, order.ID, f.customer.ID)
	if updated.Status != model.OrderStatusPending {
		t.Fatalf("failed payment must not advance the order, got %s", updated.Status)
	}

	if _, err := f.payments.HandleCallback(ctx, "A-unknown", "OK", nil, nil); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("unknown authority: got %v", err)
	}
}

func TestReceiptApprovalFlow(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	payment, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	uploaded, err := f.payments.UploadReceipt(ctx, payment.ID, f.customer.ID, "https://cdn.test/r.jpg")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if uploaded.Status != model.PaymentStatusAwaitingApproval {
		t.Fatalf("expected AWAITING_APPROVAL, got %s", uploaded.Status)
	}

	// The review queue sees it.
	queue, err := f.payments.PendingApprovals(ctx, f.admin.ID, 0)
	if err != nil {
		t.Fatalf("pending approvals failed: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != payment.ID {
		t.Fatalf("unexpected review queue: %+v", queue)
	}

	if _, err := f.payments.Approve(ctx, payment.ID, f.customer.ID); !errors.Is(err, domainErrors.ErrAccessDenied) {
		t.Fatalf("customer approve: got %v", err)
	}

	approved, err := f.payments.Approve(ctx, payment.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != model.PaymentStatusSuccess || approved.ApprovedBy == nil || *approved.ApprovedBy != f.admin.ID {
		t.Fatalf("unexpected approved payment: %+v", approved)
	}

	updated, _ := f.orders.GetForUser(ctx, order.ID, f.customer.ID)
	if updated.Status != model.OrderStatusReadyForPrint {
		t.Fatalf("approved full payment must advance the order, got %s", updated.Status)
	}

	// Approve is guarded by AWAITING_APPROVAL.
	if _, err := f.payments.Approve(ctx, payment.ID, f.admin.ID); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("double approve: got %v", err)
	}
}

func TestRejectAndReset(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, false)

	payment, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeSubscription)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := f.payments.UploadReceipt(ctx, payment.ID, f.customer.ID, "https://cdn.test/r.jpg"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	rejected, err := f.payments.Reject(ctx, payment.ID, f.admin.ID, "unreadable receipt")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != model.PaymentStatusFailed || rejected.RejectionReason == nil {
		t.Fatalf("unexpected rejected payment: %+v", rejected)
	}

	reset, err := f.payments.ResetToPending(ctx, payment.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if reset.Status != model.PaymentStatusPending {
		t.Fatalf("expected PENDING after reset, got %s", reset.Status)
	}
	if reset.ReceiptImageURL != nil || reset.RejectionReason != nil || reset.ApprovedBy != nil {
		t.Fatalf("reset must clear review fields: %+v", reset)
	}
}

func TestPaymentSummary(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	order := f.createOrder(t, true)
	f.ledger.Orders[order.ID].Status = model.OrderStatusPending

	validation, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypeValidation)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := f.payments.HandleCallback(ctx, validation.Authority, "OK", nil, nil); err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if _, _, err := f.payments.Initiate(ctx, f.customer.ID, order.ID, model.PaymentTypePrint); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	summary, err := f.payments.Summary(ctx, order.ID, f.customer.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !summary.TotalPaid.Equal(order.ValidationPrice) {
		t.Fatalf("total paid = %s, want %s", summary.TotalPaid, order.ValidationPrice)
	}
	if !summary.TotalPending.Equal(order.PrintPrice) {
		t.Fatalf("total pending = %s, want %s", summary.TotalPending, order.PrintPrice)
	}
}
