package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

// recurringHandler handles HTTP requests related to recurring invoice templates.
type recurringHandler struct {
	recurringService portssvc.RecurringSvcFacade
}

// newRecurringHandler creates a new recurringHandler.
func newRecurringHandler(recurringService portssvc.RecurringSvcFacade) *recurringHandler {
	return &recurringHandler{
		recurringService: recurringService,
	}
}

// createRecurringInvoice godoc
// @Summary Create a recurring invoice template
// @Description Creates an ACTIVE template whose first generation lands on its start date
// @Tags recurring-invoices
// @Accept  json
// @Produce  json
// @Param   template body dto.CreateRecurringInvoiceRequest true "Template details"
// @Success 201 {object} dto.SuccessResponse{data=dto.RecurringInvoiceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid frequency, dates or line items"
// @Router /recurring-invoices [post]
func (h *recurringHandler) createRecurringInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	createReq := dto.CreateRecurringInvoiceRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		respondBindError(c, logger, err, "createRecurringInvoice")
		return
	}

	actorID := middleware.GetActorFromContext(c)
	template, err := h.recurringService.CreateRecurringInvoice(c.Request.Context(), createReq, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "createRecurringInvoice")
		return
	}

	logger.Info("Recurring invoice created", slog.String("recurring_invoice_id", template.RecurringInvoiceID))
	c.JSON(http.StatusCreated, dto.NewSuccess(dto.ToRecurringInvoiceResponse(template)))
}

// getRecurringInvoice godoc
// @Summary Get a recurring invoice template
// @Description Retrieves a template with its line-item snapshot
// @Tags recurring-invoices
// @Produce  json
// @Param   recurringID path string true "Recurring invoice ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.RecurringInvoiceResponse}
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Router /recurring-invoices/{recurringID} [get]
func (h *recurringHandler) getRecurringInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	recurringID := c.Param("recurringID")

	template, err := h.recurringService.GetRecurringInvoiceByID(c.Request.Context(), recurringID)
	if err != nil {
		respondServiceError(c, logger, err, "getRecurringInvoice")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToRecurringInvoiceResponse(template)))
}

// listRecurringInvoices godoc
// @Summary List recurring invoice templates
// @Description Retrieves a page of templates with a next-page token
// @Tags recurring-invoices
// @Produce  json
// @Param   status query string false "Filter by status (ACTIVE, CANCELED)"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.SuccessResponse{data=dto.ListRecurringInvoicesResponse}
// @Router /recurring-invoices [get]
func (h *recurringHandler) listRecurringInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListRecurringInvoicesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "listRecurringInvoices")
		return
	}

	page, err := h.recurringService.ListRecurringInvoices(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "listRecurringInvoices")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(page))
}

// cancelRecurringInvoice godoc
// @Summary Cancel a recurring invoice template
// @Description Stops future generation; already-generated invoices are untouched
// @Tags recurring-invoices
// @Produce  json
// @Param   recurringID path string true "Recurring invoice ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.RecurringInvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Template already canceled"
// @Router /recurring-invoices/{recurringID}/cancel [post]
func (h *recurringHandler) cancelRecurringInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	recurringID := c.Param("recurringID")

	actorID := middleware.GetActorFromContext(c)
	template, err := h.recurringService.CancelRecurringInvoice(c.Request.Context(), recurringID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "cancelRecurringInvoice")
		return
	}

	logger.Info("Recurring invoice canceled", slog.String("recurring_invoice_id", recurringID))
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToRecurringInvoiceResponse(template)))
}

// reactivateRecurringInvoice godoc
// @Summary Reactivate a recurring invoice template
// @Description Resumes generation, fast-forwarding past missed dates without generating catch-up invoices
// @Tags recurring-invoices
// @Produce  json
// @Param   recurringID path string true "Recurring invoice ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.RecurringInvoiceResponse}
// @Failure 409 {object} dto.ErrorResponse "Template is not canceled or is exhausted"
// @Router /recurring-invoices/{recurringID}/reactivate [post]
func (h *recurringHandler) reactivateRecurringInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	recurringID := c.Param("recurringID")

	actorID := middleware.GetActorFromContext(c)
	template, err := h.recurringService.ReactivateRecurringInvoice(c.Request.Context(), recurringID, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "reactivateRecurringInvoice")
		return
	}

	logger.Info("Recurring invoice reactivated",
		slog.String("recurring_invoice_id", recurringID),
		slog.Time("next_date", template.NextDate),
	)
	c.JSON(http.StatusOK, dto.NewSuccess(dto.ToRecurringInvoiceResponse(template)))
}

// registerRecurringRoutes registers recurring invoice specific routes
func registerRecurringRoutes(group *gin.RouterGroup, recurringService portssvc.RecurringSvcFacade) {
	recurringHandler := newRecurringHandler(recurringService)

	recurring := group.Group("/recurring-invoices")
	{
		recurring.POST("", recurringHandler.createRecurringInvoice)
		recurring.GET("", recurringHandler.listRecurringInvoices)
		recurring.GET("/:recurringID", recurringHandler.getRecurringInvoice)
		recurring.POST("/:recurringID/cancel", recurringHandler.cancelRecurringInvoice)
		recurring.POST("/:recurringID/reactivate", recurringHandler.reactivateRecurringInvoice)
	}
}
