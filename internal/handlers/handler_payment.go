package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

// paymentHandler handles HTTP requests related to the payment ledger.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(paymentService portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: paymentService,
	}
}

// recordPayment godoc
// @Summary Record a payment
// @Description Appends a ledger entry and transitions the invoice accordingly; both commit atomically
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.SuccessResponse{data=dto.RecordPaymentResponse}
// @Failure 409 {object} dto.ErrorResponse "Invoice not payable"
// @Failure 422 {object} dto.ErrorResponse "Payment exceeds outstanding balance"
// @Router /invoices/{invoiceID}/payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	recordReq := dto.RecordPaymentRequest{}
	if err := c.ShouldBindJSON(&recordReq); err != nil {
		respondBindError(c, logger, err, "recordPayment")
		return
	}

	actorID := middleware.GetActorFromContext(c)
	payment, invoice, err := h.paymentService.RecordPayment(c.Request.Context(), invoiceID, recordReq, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "recordPayment")
		return
	}

	logger.Info("Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("invoice_id", invoiceID),
		slog.String("amount", payment.Amount.String()),
	)
	c.JSON(http.StatusCreated, dto.NewSuccess(dto.RecordPaymentResponse{
		Payment: dto.ToPaymentResponse(payment),
		Invoice: dto.ToInvoiceResponse(invoice),
	}))
}

// voidPayment godoc
// @Summary Void a payment
// @Description Reverses a recorded payment; the invoice's amount paid and status are restored
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /payments/{paymentID} [delete]
func (h *paymentHandler) voidPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.paymentService.VoidPayment(c.Request.Context(), paymentID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "voidPayment")
		return
	}

	logger.Info("Payment voided", slog.String("payment_id", paymentID), slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// listPayments godoc
// @Summary List payments
// @Description Retrieves a filtered page of ledger entries with a next-page token
// @Tags payments
// @Produce  json
// @Param   invoiceID query string false "Filter by invoice"
// @Param   clientID query string false "Filter by client"
// @Param   methodID query string false "Filter by payment method"
// @Param   fromDate query string false "Payment date lower bound (YYYY-MM-DD)"
// @Param   toDate query string false "Payment date upper bound (YYYY-MM-DD)"
// @Param   minAmount query string false "Minimum amount"
// @Param   maxAmount query string false "Maximum amount"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.SuccessResponse{data=dto.ListPaymentsResponse}
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListPaymentsParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "listPayments")
		return
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "listPayments")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(page))
}

// getPaymentStatistics godoc
// @Summary Payment statistics
// @Description Aggregates the filtered ledger: count, total, average and per-method totals
// @Tags payments
// @Produce  json
// @Param   clientID query string false "Filter by client"
// @Param   methodID query string false "Filter by payment method"
// @Param   fromDate query string false "Payment date lower bound (YYYY-MM-DD)"
// @Param   toDate query string false "Payment date upper bound (YYYY-MM-DD)"
// @Success 200 {object} dto.SuccessResponse{data=domain.PaymentStatistics}
// @Router /payments/statistics [get]
func (h *paymentHandler) getPaymentStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.PaymentStatisticsParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "getPaymentStatistics")
		return
	}

	stats, err := h.paymentService.GetPaymentStatistics(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "getPaymentStatistics")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(stats))
}

// registerPaymentRoutes registers payment specific routes
func registerPaymentRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	paymentHandler := newPaymentHandler(paymentService)

	group.POST("/invoices/:invoiceID/payments", paymentHandler.recordPayment)

	payments := group.Group("/payments")
	{
		payments.GET("", paymentHandler.listPayments)
		payments.GET("/statistics", paymentHandler.getPaymentStatistics)
		payments.DELETE("/:paymentID", paymentHandler.voidPayment)
	}
}
