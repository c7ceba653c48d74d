package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
	"github.com/printflow/printflow/internal/server/http/dto"
	"github.com/printflow/printflow/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	userID := CurrentUserID(c)

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	plan, ok := model.ParseDesignPlan(req.DesignPlan)
	if !ok {
		c.Status(http.StatusUnprocessableEntity)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), userID, usecase.CreateOrderInput{
		ProductID:           productID,
		DesignPlan:          plan,
		Quantity:            req.Quantity,
		ValidationRequested: req.ValidationRequested,
		DesignFileURL:       req.DesignFileURL,
		ShippingAddress:     req.ShippingAddress,
		CustomerNotes:       req.CustomerNotes,
	})
	if err != nil {
		abortDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	orders, err := h.facade.Orders(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.facade.Order(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Queue handles GET /api/printshop/queue.
func (h *OrderHandler) Queue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	orders, err := h.facade.PrintShopQueue(c.Request.Context(), limit)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Accepted handles GET /api/printshop/orders.
func (h *OrderHandler) Accepted(c *gin.Context) {
	orders, err := h.facade.PrintShopOrders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Accept handles POST /api/orders/:id/accept.
func (h *OrderHandler) Accept(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.facade.AcceptOrder(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// SubmitDesign handles POST /api/orders/:id/design.
func (h *OrderHandler) SubmitDesign(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.SubmitDesign(c.Request.Context(), orderID, CurrentUserID(c), req.DesignFileURL)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	status, valid := model.ParseOrderStatus(req.Status)
	if !valid {
		c.Status(http.StatusUnprocessableEntity)
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), orderID, repository.StatusChange{
		Status:       status,
		TrackingCode: req.TrackingCode,
	})
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                  order.ID.String(),
		ProductID:           order.ProductID.String(),
		DesignPlan:          string(order.DesignPlan),
		Status:              string(order.Status),
		Quantity:            order.Quantity,
		DesignFileURL:       order.DesignFileURL,
		ValidationRequested: order.ValidationRequested,
		RevisionCount:       order.RevisionCount,
		MaxRevisions:        order.MaxRevisions,
		DesignPrice:         order.DesignPrice,
		ValidationPrice:     order.ValidationPrice,
		FixPrice:            order.FixPrice,
		PrintPrice:          order.PrintPrice,
		TotalPrice:          order.TotalPrice,
		TrackingCode:        order.TrackingCode,
		ShippingAddress:     order.ShippingAddress,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
	if order.ValidationStatus != nil {
		s := string(*order.ValidationStatus)
		resp.ValidationStatus = &s
	}
	return resp
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}
