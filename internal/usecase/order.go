package usecase

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/printflow/printflow/internal/adapter/notify"
	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
	"github.com/printflow/printflow/internal/pricing"
)

// OrderUseCase encapsulates the order lifecycle.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	events   EventPublisher
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, events EventPublisher) *OrderUseCase {
	return &OrderUseCase{orders: orders, products: products, users: users, events: events}
}

// CreateOrderInput carries customer-supplied order parameters.
type CreateOrderInput struct {
	ProductID           uuid.UUID
	DesignPlan          model.DesignPlan
	Quantity            int
	ValidationRequested bool
	DesignFileURL       *string
	ShippingAddress     *string
	CustomerNotes       *string
}

// Create prices and registers a new order.
func (u *OrderUseCase) Create(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*model.Order, error) {
	if in.Quantity < 1 {
		return nil, domainErrors.ErrInvalidAmount
	}

	product, err := u.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domainErrors.ErrProductInactive
	}

	if in.DesignPlan.RequiresUploadedDesign() && (in.DesignFileURL == nil || *in.DesignFileURL == "") {
		return nil, domainErrors.ErrDesignFileRequired
	}

	quote := pricing.Calculate(product.BasePrice, in.Quantity, in.DesignPlan, in.ValidationRequested)

	status := model.OrderStatusPending
	if in.ValidationRequested {
		status = model.OrderStatusAwaitingValidation
	} else if in.DesignPlan.Designed() {
		status = model.OrderStatusDesigning
	}

	order, err := u.orders.Create(ctx, repository.CreateOrder{
		UserID:              userID,
		ProductID:           in.ProductID,
		DesignPlan:          in.DesignPlan,
		Status:              status,
		Quantity:            in.Quantity,
		DesignFileURL:       in.DesignFileURL,
		ValidationRequested: in.ValidationRequested,
		ShippingAddress:     in.ShippingAddress,
		CustomerNotes:       in.CustomerNotes,
		DesignPrice:         quote.DesignPrice,
		ValidationPrice:     quote.ValidationPrice,
		FixPrice:            quote.FixPrice,
		PrintPrice:          quote.PrintPrice,
		TotalPrice:          quote.TotalPrice,
		MaxRevisions:        quote.MaxRevisions,
	})
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "order.created", Payload: map[string]string{
		"order_id":    order.ID.String(),
		"user_id":     userID.String(),
		"product_id":  in.ProductID.String(),
		"design_plan": string(in.DesignPlan),
		"total_price": order.TotalPrice.String(),
	}})

	return order, nil
}

// GetForUser returns the order if it belongs to the user; admins see all.
func (u *OrderUseCase) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		if err := u.requireRole(ctx, userID, model.UserRoleAdmin); err != nil {
			return nil, domainErrors.ErrNotFound
		}
	}
	return order, nil
}

// ListByUser returns orders sorted by creation time.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// PrintShopQueue returns fully paid orders waiting for a print shop, FIFO.
func (u *OrderUseCase) PrintShopQueue(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.orders.ListReadyForPrint(ctx, limit)
}

// ListByPrintShop returns orders accepted by the given print shop.
func (u *OrderUseCase) ListByPrintShop(ctx context.Context, printShopID uuid.UUID) ([]model.Order, error) {
	return u.orders.ListByPrintShop(ctx, printShopID)
}

// AcceptByPrintShop assigns the order to a print shop and starts printing.
func (u *OrderUseCase) AcceptByPrintShop(ctx context.Context, orderID, printShopID uuid.UUID) (*model.Order, error) {
	if err := u.requireRole(ctx, printShopID, model.UserRolePrintShop); err != nil {
		return nil, err
	}

	order, err := u.orders.AcceptByPrintShop(ctx, orderID, printShopID)
	if err != nil {
		return nil, err
	}

	u.publishStatusChange(order, "printshop_accept")
	return order, nil
}

// SubmitDesign records the designer's finished artwork. The order leaves
// DESIGNING and becomes PENDING; if its total is already covered, payment
// reconciliation advances it in the same transition.
func (u *OrderUseCase) SubmitDesign(ctx context.Context, orderID, designerID uuid.UUID, designFileURL string) (*model.Order, error) {
	if designFileURL == "" {
		return nil, domainErrors.ErrDesignFileRequired
	}
	if err := u.requireRole(ctx, designerID, model.UserRoleDesigner); err != nil {
		return nil, err
	}

	order, err := u.orders.SubmitDesign(ctx, repository.SubmitDesign{
		OrderID:       orderID,
		DesignerID:    designerID,
		DesignFileURL: designFileURL,
	})
	if err != nil {
		return nil, err
	}

	u.events.Enqueue(notify.Event{Type: "order.design_submitted", Payload: map[string]string{
		"order_id":       order.ID.String(),
		"designer_id":    designerID.String(),
		"revision_count": strconv.Itoa(order.RevisionCount),
	}})

	return order, nil
}

// UpdateStatus applies a staff-driven status transition.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID uuid.UUID, change repository.StatusChange) (*model.Order, error) {
	order, err := u.orders.UpdateStatus(ctx, orderID, change)
	if err != nil {
		return nil, err
	}

	u.publishStatusChange(order, "staff_update")
	return order, nil
}

// Cancel aborts an order before printing has started. The owner may cancel
// their own order; admins may cancel any.
func (u *OrderUseCase) Cancel(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		if err := u.requireRole(ctx, userID, model.UserRoleAdmin); err != nil {
			return nil, err
		}
	}

	cancelled, err := u.orders.Cancel(ctx, orderID)
	if err != nil {
		return nil, err
	}

	u.publishStatusChange(cancelled, "cancelled")
	return cancelled, nil
}

func (u *OrderUseCase) publishStatusChange(order *model.Order, reason string) {
	u.events.Enqueue(notify.Event{Type: "order.status_change", Payload: map[string]string{
		"order_id":   order.ID.String(),
		"new_status": string(order.Status),
		"reason":     reason,
	}})
}

func (u *OrderUseCase) requireRole(ctx context.Context, userID uuid.UUID, role model.UserRole) error {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if usr.Role != role {
		return domainErrors.ErrAccessDenied
	}
	return nil
}
