package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

const reportDateFormat = "2006-01-02"

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(reportingService portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: reportingService,
	}
}

// getRevenueSummary godoc
// @Summary Revenue summary
// @Description Aggregates invoices created within the period: counts by status, invoiced, collected, outstanding, overdue
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.SuccessResponse{data=domain.RevenueSummary}
// @Failure 400 {object} dto.ErrorResponse "Missing or inverted period"
// @Router /reports/summary [get]
func (h *reportingHandler) getRevenueSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, err := time.Parse(reportDateFormat, c.Query("from"))
	if err != nil {
		respondBindError(c, logger, err, "getRevenueSummary")
		return
	}
	to, err := time.Parse(reportDateFormat, c.Query("to"))
	if err != nil {
		respondBindError(c, logger, err, "getRevenueSummary")
		return
	}

	summary, err := h.reportingService.RevenueSummary(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, logger, err, "getRevenueSummary")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(summary))
}

// getRevenueTrends godoc
// @Summary Revenue trends
// @Description Per-month invoiced versus collected for the trailing window, zero-filled
// @Tags reports
// @Produce  json
// @Param   months query int false "Window length in months (default 12, max 36)"
// @Success 200 {object} dto.SuccessResponse{data=[]domain.RevenueTrendPoint}
// @Router /reports/trends [get]
func (h *reportingHandler) getRevenueTrends(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	months, err := monthsParam(c, 12)
	if err != nil {
		respondBindError(c, logger, err, "getRevenueTrends")
		return
	}

	points, err := h.reportingService.RevenueTrends(c.Request.Context(), months, time.Now().UTC())
	if err != nil {
		respondServiceError(c, logger, err, "getRevenueTrends")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(points))
}

// getAgingReport godoc
// @Summary Aging report
// @Description Buckets overdue balances by days past due: 0-30, 31-60, 61-90, >90
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.SuccessResponse{data=[]domain.AgingBucket}
// @Router /reports/aging [get]
func (h *reportingHandler) getAgingReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	buckets, err := h.reportingService.AgingReport(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondServiceError(c, logger, err, "getAgingReport")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(buckets))
}

// getClientPaymentBehavior godoc
// @Summary Client payment behavior
// @Description Per-client invoice counts, paid counts, average days to pay and outstanding balance
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.SuccessResponse{data=[]domain.ClientPaymentBehavior}
// @Router /reports/clients [get]
func (h *reportingHandler) getClientPaymentBehavior(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	behaviors, err := h.reportingService.ClientPaymentBehavior(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "getClientPaymentBehavior")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(behaviors))
}

// getForecast godoc
// @Summary Revenue forecast
// @Description Projects future months from active recurring templates plus the historical collection average
// @Tags reports
// @Produce  json
// @Param   months query int false "Horizon length in months (default 6, max 24)"
// @Success 200 {object} dto.SuccessResponse{data=[]domain.ForecastPoint}
// @Router /reports/forecast [get]
func (h *reportingHandler) getForecast(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	months, err := monthsParam(c, 6)
	if err != nil {
		respondBindError(c, logger, err, "getForecast")
		return
	}

	points, err := h.reportingService.Forecast(c.Request.Context(), months, time.Now().UTC())
	if err != nil {
		respondServiceError(c, logger, err, "getForecast")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(points))
}

// monthsParam reads the optional months query parameter. Range checks live in
// the service.
func monthsParam(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("months")
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// registerReportingRoutes registers reporting specific routes
func registerReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	reportingHandler := newReportingHandler(reportingService)

	reports := group.Group("/reports")
	{
		reports.GET("/summary", reportingHandler.getRevenueSummary)
		reports.GET("/trends", reportingHandler.getRevenueTrends)
		reports.GET("/aging", reportingHandler.getAgingReport)
		reports.GET("/clients", reportingHandler.getClientPaymentBehavior)
		reports.GET("/forecast", reportingHandler.getForecast)
	}
}
