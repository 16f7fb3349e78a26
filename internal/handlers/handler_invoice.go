package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

// invoiceHandler handles HTTP requests related to invoices.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	overdueService portssvc.OverdueSvcFacade
}

// newInvoiceHandler creates a new invoiceHandler.
func newInvoiceHandler(invoiceService portssvc.InvoiceSvcFacade, overdueService portssvc.OverdueSvcFacade) *invoiceHandler {
	return &invoiceHandler{
		invoiceService: invoiceService,
		overdueService: overdueService,
	}
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Description Creates a DRAFT invoice with totals computed from its line items
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or unknown client"
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	createReq := dto.CreateInvoiceRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		respondBindError(c, logger, err, "createInvoice")
		return
	}

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), createReq, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "createInvoice")
		return
	}

	logger.Info("Invoice created", slog.String("invoice_id", invoice.InvoiceID), slog.String("invoice_number", invoice.InvoiceNumber))
	c.JSON(http.StatusCreated, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// getInvoice godoc
// @Summary Get an invoice
// @Description Retrieves an invoice with its line items
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), invoiceID)
	if err != nil {
		respondServiceError(c, logger, err, "getInvoice")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// listInvoices godoc
// @Summary List invoices
// @Description Retrieves a filtered page of invoices with a next-page token
// @Tags invoices
// @Produce  json
// @Param   status query string false "Filter by status"
// @Param   clientID query string false "Filter by client"
// @Param   fromDate query string false "Due date lower bound (YYYY-MM-DD)"
// @Param   toDate query string false "Due date upper bound (YYYY-MM-DD)"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.SuccessResponse{data=dto.ListInvoicesResponse}
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListInvoicesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "listInvoices")
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "listInvoices")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(page))
}

// updateInvoice godoc
// @Summary Update an invoice
// @Description Rewrites details and line items of a DRAFT or SENT invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Fields to update"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Invoice no longer editable"
// @Failure 422 {object} dto.ErrorResponse "New total below amount already paid"
// @Router /invoices/{invoiceID} [put]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	updateReq := dto.UpdateInvoiceRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		respondBindError(c, logger, err, "updateInvoice")
		return
	}

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), invoiceID, updateReq, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "updateInvoice")
		return
	}

	logger.Info("Invoice updated", slog.String("invoice_id", invoiceID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// deleteInvoice godoc
// @Summary Delete a draft invoice
// @Description Deletes an invoice while still DRAFT
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 204 "Deleted"
// @Failure 409 {object} dto.ErrorResponse "Only drafts can be deleted"
// @Router /invoices/{invoiceID} [delete]
func (h *invoiceHandler) deleteInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	actorID := middleware.GetActorFromContext(c)
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), invoiceID, actorID); err != nil {
		respondServiceError(c, logger, err, "deleteInvoice")
		return
	}

	logger.Info("Invoice deleted", slog.String("invoice_id", invoiceID))
	c.Status(http.StatusNoContent)
}

// sendInvoice godoc
// @Summary Send an invoice
// @Description Transitions DRAFT to SENT and emails the client; a mail failure never blocks the transition
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Invoice is not a draft"
// @Router /invoices/{invoiceID}/send [post]
func (h *invoiceHandler) sendInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.invoiceService.SendInvoice(c.Request.Context(), invoiceID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "sendInvoice")
		return
	}

	logger.Info("Invoice sent", slog.String("invoice_id", invoiceID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Description Cancels an invoice; refused once any payment has been recorded
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Invoice has payments or is terminal"
// @Router /invoices/{invoiceID}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), invoiceID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "cancelInvoice")
		return
	}

	logger.Info("Invoice canceled", slog.String("invoice_id", invoiceID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// markInvoicePaid godoc
// @Summary Mark an invoice as paid
// @Description Settles the outstanding balance through the payment ledger
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   request body dto.MarkAsPaidRequest true "Settlement method"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Nothing outstanding"
// @Router /invoices/{invoiceID}/markpaid [post]
func (h *invoiceHandler) markInvoicePaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	req := dto.MarkAsPaidRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "markInvoicePaid")
		return
	}

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.invoiceService.MarkAsPaid(c.Request.Context(), invoiceID, req.MethodID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "markInvoicePaid")
		return
	}

	logger.Info("Invoice marked as paid", slog.String("invoice_id", invoiceID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// applyLateFee godoc
// @Summary Apply a late fee
// @Description Appends a fixed or percentage fee line item to an overdue invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   fee body dto.ApplyLateFeeRequest true "Fee type and value"
// @Success 200 {object} dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Invoice is not overdue"
// @Router /invoices/{invoiceID}/latefee [post]
func (h *invoiceHandler) applyLateFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	req := dto.ApplyLateFeeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "applyLateFee")
		return
	}

	actorID := middleware.GetActorFromContext(c)
	invoice, err := h.overdueService.ApplyLateFee(c.Request.Context(), invoiceID, req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "applyLateFee")
		return
	}

	logger.Info("Late fee applied", slog.String("invoice_id", invoiceID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponse(invoice)))
}

// listOverdueInvoices godoc
// @Summary List overdue invoices
// @Description Retrieves all currently overdue invoices with their line items
// @Tags invoices
// @Produce  json
// @Success 200 {object} dto.SuccessResponse{data=[]dto.InvoiceResponse}
// @Router /invoices/overdue [get]
func (h *invoiceHandler) listOverdueInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	invoices, err := h.overdueService.ListOverdueInvoices(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondServiceError(c, logger, err, "listOverdueInvoices")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToInvoiceResponses(invoices)))
}

// registerInvoiceRoutes registers invoice specific routes
func registerInvoiceRoutes(group *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade, overdueService portssvc.OverdueSvcFacade) {
	invoiceHandler := newInvoiceHandler(invoiceService, overdueService)

	invoices := group.Group("/invoices")
	{
		invoices.POST("", invoiceHandler.createInvoice)
		invoices.GET("", invoiceHandler.listInvoices)
		invoices.GET("/overdue", invoiceHandler.listOverdueInvoices)
		invoices.GET("/:invoiceID", invoiceHandler.getInvoice)
		invoices.PUT("/:invoiceID", invoiceHandler.updateInvoice)
		invoices.DELETE("/:invoiceID", invoiceHandler.deleteInvoice)
		invoices.POST("/:invoiceID/send", invoiceHandler.sendInvoice)
		invoices.POST("/:invoiceID/cancel", invoiceHandler.cancelInvoice)
		invoices.POST("/:invoiceID/markpaid", invoiceHandler.markInvoicePaid)
		invoices.POST("/:invoiceID/latefee", invoiceHandler.applyLateFee)
	}
}
