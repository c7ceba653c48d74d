package usecase

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
)

type orderFixture struct {
	uc       *OrderUseCase
	ledger   *testhelpers.MemoryLedger
	users    *testhelpers.UserRepositoryStub
	products *testhelpers.ProductRepositoryStub
	events   *testhelpers.EventRecorder
	customer *model.User
	product  *model.Product
}

func newOrderFixture() *orderFixture {
	ledger := testhelpers.NewMemoryLedger()
	users := testhelpers.NewUserRepositoryStub()
	products := testhelpers.NewProductRepositoryStub()
	events := &testhelpers.EventRecorder{}

	customer := users.Seed("customer", model.UserRoleCustomer)
	product := products.Seed("business cards", decimal.NewFromInt(120000), true)

	return &orderFixture{
		uc:       NewOrderUseCase(ledger.OrderRepo(), products, users, events),
		ledger:   ledger,
		users:    users,
		products: products,
		events:   events,
		customer: customer,
		product:  product,
	}
}

func TestOrderCreatePricesAndStatus(t *testing.T) {
	f := newOrderFixture()

	order, err := f.uc.Create(context.Background(), f.customer.ID, CreateOrderInput{
		ProductID:           f.product.ID,
		DesignPlan:          model.DesignPlanPublic,
		Quantity:            10,
		ValidationRequested: true,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if order.Status != model.OrderStatusAwaitingValidation {
		t.Fatalf("expected AWAITING_VALIDATION, got %s", order.Status)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(1250000)) {
		t.Fatalf("total price = %s", order.TotalPrice)
	}
	if !order.ValidationPrice.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("validation price = %s", order.ValidationPrice)
	}
	if types := f.events.Types(); len(types) != 1 || types[0] != "order.created" {
		t.Fatalf("unexpected events: %v", types)
	}
}

func TestOrderCreateInitialStatuses(t *testing.T) {
	f := newOrderFixture()

	plain, err := f.uc.Create(context.Background(), f.customer.ID, CreateOrderInput{
		ProductID:  f.product.ID,
		DesignPlan: model.DesignPlanPublic,
		Quantity:   1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if plain.Status != model.OrderStatusPending {
		t.Fatalf("public plan starts %s", plain.Status)
	}

	designed, err := f.uc.Create(context.Background(), f.customer.ID, CreateOrderInput{
		ProductID:  f.product.ID,
		DesignPlan: model.DesignPlanPrivate,
		Quantity:   1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if designed.Status != model.OrderStatusDesigning {
		t.Fatalf("private plan starts %s", designed.Status)
	}
}

func TestOrderCreateGuards(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 0,
	})
	if !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("zero quantity: got %v", err)
	}

	_, err = f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanOwnDesign, Quantity: 1,
	})
	if !errors.Is(err, domainErrors.ErrDesignFileRequired) {
		t.Fatalf("own design without file: got %v", err)
	}

	inactive := f.products.Seed("legacy flyer", decimal.NewFromInt(10000), false)
	_, err = f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: inactive.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if !errors.Is(err, domainErrors.ErrProductInactive) {
		t.Fatalf("inactive product: got %v", err)
	}

	_, err = f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: uuid.New(), DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("missing product: got %v", err)
	}
}

func TestOrderGetForUserHidesForeignOrders(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	stranger := f.users.Seed("stranger", model.UserRoleCustomer)
	if _, err := f.uc.GetForUser(ctx, order.ID, stranger.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("foreign order must look absent, got %v", err)
	}

	admin := f.users.Seed("admin", model.UserRoleAdmin)
	if _, err := f.uc.GetForUser(ctx, order.ID, admin.ID); err != nil {
		t.Fatalf("admin must see any order: %v", err)
	}
}

func TestOrderCancelGuards(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	stranger := f.users.Seed("other", model.UserRoleCustomer)
	if _, err := f.uc.Cancel(ctx, order.ID, stranger.ID); !errors.Is(err, domainErrors.ErrAccessDenied) {
		t.Fatalf("stranger cancel: got %v", err)
	}

	cancelled, err := f.uc.Cancel(ctx, order.ID, f.customer.ID)
	if err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if cancelled.Status != model.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancel result: %+v", cancelled)
	}

	if _, err := f.uc.Cancel(ctx, order.ID, f.customer.ID); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("double cancel: got %v", err)
	}
}

func TestOrderAcceptByPrintShop(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	shop := f.users.Seed("shop", model.UserRolePrintShop)

	// Not yet paid, so not READY_FOR_PRINT.
	if _, err := f.uc.AcceptByPrintShop(ctx, order.ID, shop.ID); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("accept before payment: got %v", err)
	}

	if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusReadyForPrint}); err != nil {
		t.Fatalf("force ready failed: %v", err)
	}

	if _, err := f.uc.AcceptByPrintShop(ctx, order.ID, f.customer.ID); !errors.Is(err, domainErrors.ErrAccessDenied) {
		t.Fatalf("customer accept: got %v", err)
	}

	accepted, err := f.uc.AcceptByPrintShop(ctx, order.ID, shop.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != model.OrderStatusPrinting || accepted.PrintShopID == nil || *accepted.PrintShopID != shop.ID {
		t.Fatalf("unexpected accept result: %+v", accepted)
	}
	if accepted.AcceptedAt == nil {
		t.Fatal("accepted_at must be stamped")
	}

	// Second shop loses the race.
	rival := f.users.Seed("rival", model.UserRolePrintShop)
	if _, err := f.uc.AcceptByPrintShop(ctx, order.ID, rival.ID); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("second accept: got %v", err)
	}
}

func TestOrderUpdateStatusStampsTimestamps(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	tracking := "TRK-100"
	shipped, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{
		Status:       model.OrderStatusShipped,
		TrackingCode: &tracking,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if shipped.ShippedAt == nil || shipped.TrackingCode == nil || *shipped.TrackingCode != tracking {
		t.Fatalf("unexpected shipped order: %+v", shipped)
	}

	delivered, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusDelivered})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Fatal("delivered_at must be stamped")
	}

	// DELIVERED is terminal.
	if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusPending}); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("transition from terminal: got %v", err)
	}
}

func TestOrderUpdateStatusRejectsBackwardMoves(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	tracking := "TRK-200"
	if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{
		Status: model.OrderStatusShipped, TrackingCode: &tracking,
	}); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	// Rolling back to PENDING would put the order in front of payment
	// reconciliation a second time.
	if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusPending}); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("shipped to pending: got %v", err)
	}
	if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusPrinting}); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("shipped to printing: got %v", err)
	}

	current, err := f.uc.GetForUser(ctx, order.ID, f.customer.ID)
	if err != nil || current.Status != model.OrderStatusShipped {
		t.Fatalf("order must stay SHIPPED, got %+v err=%v", current, err)
	}
}

func TestOrderSubmitDesign(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	designer := f.users.Seed("designer", model.UserRoleDesigner)

	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanPrivate, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if order.Status != model.OrderStatusDesigning {
		t.Fatalf("private plan starts %s", order.Status)
	}

	if _, err := f.uc.SubmitDesign(ctx, order.ID, f.customer.ID, "https://cdn.test/a.pdf"); !errors.Is(err, domainErrors.ErrAccessDenied) {
		t.Fatalf("customer submit: got %v", err)
	}
	if _, err := f.uc.SubmitDesign(ctx, order.ID, designer.ID, ""); !errors.Is(err, domainErrors.ErrDesignFileRequired) {
		t.Fatalf("empty file url: got %v", err)
	}

	submitted, err := f.uc.SubmitDesign(ctx, order.ID, designer.ID, "https://cdn.test/a.pdf")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != model.OrderStatusPending || submitted.RevisionCount != 1 {
		t.Fatalf("unexpected order: %+v", submitted)
	}
	if submitted.DesignerID == nil || *submitted.DesignerID != designer.ID {
		t.Fatal("designer must be assigned")
	}
	if submitted.DesignFileURL == nil || *submitted.DesignFileURL != "https://cdn.test/a.pdf" {
		t.Fatal("design file must be recorded")
	}

	// Out of DESIGNING, so further submissions bounce.
	if _, err := f.uc.SubmitDesign(ctx, order.ID, designer.ID, "https://cdn.test/b.pdf"); !errors.Is(err, domainErrors.ErrInvalidState) {
		t.Fatalf("second submit: got %v", err)
	}

	types := f.events.Types()
	if len(types) == 0 || types[len(types)-1] != "order.design_submitted" {
		t.Fatalf("unexpected events: %v", types)
	}
}

func TestOrderSubmitDesignRevisionLimit(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	designer := f.users.Seed("designer", model.UserRoleDesigner)
	rival := f.users.Seed("rival", model.UserRoleDesigner)

	// SEMI_PRIVATE carries a budget of three design submissions.
	order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
		ProductID: f.product.ID, DesignPlan: model.DesignPlanSemiPrivate, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if i > 0 {
			if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusDesigning}); err != nil {
				t.Fatalf("rework %d failed: %v", i, err)
			}
		}
		if _, err := f.uc.SubmitDesign(ctx, order.ID, designer.ID, "https://cdn.test/v.pdf"); err != nil {
			t.Fatalf("submit %d failed: %v", i+1, err)
		}
	}

	if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusDesigning}); err != nil {
		t.Fatalf("rework failed: %v", err)
	}
	if _, err := f.uc.SubmitDesign(ctx, order.ID, rival.ID, "https://cdn.test/v4.pdf"); !errors.Is(err, domainErrors.ErrAccessDenied) {
		t.Fatalf("rival submit: got %v", err)
	}
	if _, err := f.uc.SubmitDesign(ctx, order.ID, designer.ID, "https://cdn.test/v4.pdf"); !errors.Is(err, domainErrors.ErrRevisionLimit) {
		t.Fatalf("over the revision budget: got %v", err)
	}
}

func TestPrintShopQueueLimit(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		order, err := f.uc.Create(ctx, f.customer.ID, CreateOrderInput{
			ProductID: f.product.ID, DesignPlan: model.DesignPlanPublic, Quantity: 1,
		})
		if err != nil {
			t.Fatalf("create returned error: %v", err)
		}
		if _, err := f.uc.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: model.OrderStatusReadyForPrint}); err != nil {
			t.Fatalf("force ready failed: %v", err)
		}
	}

	queue, err := f.uc.PrintShopQueue(ctx, 2)
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("expected 2 queued orders, got %d", len(queue))
	}

	all, err := f.uc.PrintShopQueue(ctx, 0)
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("default limit should cover all 3, got %d", len(all))
	}
}
