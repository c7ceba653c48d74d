package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/server/http/dto"
	"github.com/printflow/printflow/internal/usecase"
)

// ValidationHandler manages validation flow endpoints.
type ValidationHandler struct {
	facade ValidationFacade
}

// NewValidationHandler constructs ValidationHandler.
func NewValidationHandler(facade ValidationFacade) *ValidationHandler {
	return &ValidationHandler{facade: facade}
}

// Request handles POST /api/orders/:id/validation.
func (h *ValidationHandler) Request(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.facade.RequestValidation(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// SubmitReport handles POST /api/orders/:id/validation/report.
func (h *ValidationHandler) SubmitReport(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	report, err := h.facade.SubmitValidationReport(c.Request.Context(), CurrentUserID(c), usecase.SubmitReportInput{
		OrderID: orderID,
		Passed:  req.Passed,
		Summary: req.Summary,
		FixCost: req.FixCost,
	})
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReportResponse(*report))
}

// ListReports handles GET /api/orders/:id/validation.
func (h *ValidationHandler) ListReports(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reports, err := h.facade.ValidationReports(c.Request.Context(), orderID, CurrentUserID(c))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	if len(reports) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.ValidationReportResponse, 0, len(reports))
	for _, r := range reports {
		resp = append(resp, toReportResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func toReportResponse(report model.ValidationReport) dto.ValidationReportResponse {
	return dto.ValidationReportResponse{
		ID:          report.ID.String(),
		OrderID:     report.OrderID.String(),
		ValidatorID: report.ValidatorID.String(),
		Passed:      report.Passed,
		Summary:     report.Summary,
		FixCost:     report.FixCost,
		CreatedAt:   report.CreatedAt,
	}
}
