package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/server/http/dto"
)

// PaymentHandler manages payment-related endpoints.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Initiate handles POST /api/orders/:id/payments.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	paymentType, valid := model.ParsePaymentType(req.Type)
	if !valid {
		c.Status(http.StatusUnprocessableEntity)
		return
	}

	payment, session, err := h.facade.InitiatePayment(c.Request.Context(), CurrentUserID(c), orderID, paymentType)
	if err != nil {
		abortDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.InitiatePaymentResponse{
		Payment:     toPaymentResponse(*payment),
		RedirectURL: session.RedirectURL,
	})
}

// Callback handles GET /api/payments/callback from the gateway.
// The gateway passes Authority and Status as query parameters; this route is
// unauthenticated because the correlation token is the credential.
func (h *PaymentHandler) Callback(c *gin.Context) {
	authority := c.Query("Authority")
	status := c.Query("Status")
	if authority == "" || status == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	var refID, cardPan *string
	if v := c.Query("RefID"); v != "" {
		refID = &v
	}
	if v := c.Query("CardPan"); v != "" {
		cardPan = &v
	}

	payment, err := h.facade.PaymentCallback(c.Request.Context(), authority, status, refID, cardPan)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(*payment))
}

// UploadReceipt handles POST /api/payments/:id/receipt.
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UploadReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	payment, err := h.facade.UploadReceipt(c.Request.Context(), paymentID, CurrentUserID(c), req.ReceiptImageURL)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(*payment))
}

// Approve handles POST /api/payments/:id/approve.
func (h *PaymentHandler) Approve(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.facade.ApprovePayment(c.Request.Context(), paymentID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(*payment))
}

// Reject handles POST /api/payments/:id/reject.
func (h *PaymentHandler) Reject(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	payment, err := h.facade.RejectPayment(c.Request.Context(), paymentID, CurrentUserID(c), req.Reason)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(*payment))
}

// Reset handles POST /api/payments/:id/reset.
func (h *PaymentHandler) Reset(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.facade.ResetPayment(c.Request.Context(), paymentID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(*payment))
}

// Get handles GET /api/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.facade.Payment(c.Request.Context(), paymentID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(*payment))
}

// ListByOrder handles GET /api/orders/:id/payments.
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payments, err := h.facade.OrderPayments(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	if len(payments) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /api/orders/:id/payments/summary.
func (h *PaymentHandler) Summary(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.facade.PaymentSummary(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentSummaryResponse{
		TotalPaid:    summary.TotalPaid,
		TotalPending: summary.TotalPending,
	})
}

// PendingApprovals handles GET /api/admin/payments/pending.
func (h *PaymentHandler) PendingApprovals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	payments, err := h.facade.PendingApprovals(c.Request.Context(), CurrentUserID(c), limit)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	if len(payments) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func toPaymentResponse(payment model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:              payment.ID.String(),
		OrderID:         payment.OrderID.String(),
		Type:            string(payment.Type),
		Amount:          payment.Amount,
		Status:          string(payment.Status),
		Authority:       payment.Authority,
		RefID:           payment.RefID,
		ReceiptImageURL: payment.ReceiptImageURL,
		RejectionReason: payment.RejectionReason,
		PaidAt:          payment.PaidAt,
		Description:     payment.Description,
		CreatedAt:       payment.CreatedAt,
	}
}
