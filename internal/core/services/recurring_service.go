package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

// recurringService manages invoice templates and materializes draft invoices
// from them on the scheduler's daily tick.
type recurringService struct {
	BaseService
	recurringRepo          portsrepo.RecurringRepositoryFacade
	clientDir              portssvc.ClientDirectorySvc
	cache                  portssvc.CacheSvc
	defaultPaymentTermDays int
	jobItemTimeout         time.Duration
}

// NewRecurringService creates a new RecurringService. The cache may be nil.
func NewRecurringService(
	recurringRepo portsrepo.RecurringRepositoryFacade,
	clientDir portssvc.ClientDirectorySvc,
	cache portssvc.CacheSvc,
	defaultPaymentTermDays int,
	jobItemTimeout time.Duration,
) portssvc.RecurringSvcFacade {
	if defaultPaymentTermDays <= 0 {
		defaultPaymentTermDays = 30
	}
	if jobItemTimeout <= 0 {
		jobItemTimeout = 30 * time.Second
	}
	return &recurringService{
		recurringRepo:          recurringRepo,
		clientDir:              clientDir,
		cache:                  cache,
		defaultPaymentTermDays: defaultPaymentTermDays,
		jobItemTimeout:         jobItemTimeout,
	}
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

// CreateRecurringInvoice creates an active template whose first generation
// falls on its start date.
func (s *recurringService) CreateRecurringInvoice(ctx context.Context, req dto.CreateRecurringInvoiceRequest, creatorID string) (*domain.RecurringInvoice, error) {
	frequency := domain.RecurrenceFrequency(req.Frequency)
	if !frequency.IsValid() {
		return nil, fmt.Errorf("%w: unsupported frequency %q", apperrors.ErrValidation, req.Frequency)
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", apperrors.ErrValidation)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	if req.MaxOccurrences != nil && *req.MaxOccurrences <= 0 {
		return nil, fmt.Errorf("%w: max occurrences must be positive", apperrors.ErrValidation)
	}
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("%w: template requires at least one line item", apperrors.ErrValidation)
	}

	if _, err := s.clientDir.GetClientByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s does not exist", apperrors.ErrValidation, req.ClientID)
		}
		s.LogError(ctx, err, "Failed to look up client for template creation", slog.String("client_id", req.ClientID))
		return nil, fmt.Errorf("failed to verify client: %w", err)
	}

	paymentTermDays := s.defaultPaymentTermDays
	if req.PaymentTermDays != nil {
		if *req.PaymentTermDays <= 0 {
			return nil, fmt.Errorf("%w: payment term days must be positive", apperrors.ErrValidation)
		}
		paymentTermDays = *req.PaymentTermDays
	}

	now := time.Now().UTC()
	recurringID := uuid.NewString()

	items := make([]domain.RecurringLineItem, len(req.LineItems))
	for i, item := range req.LineItems {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line item quantity must be positive", apperrors.ErrValidation)
		}
		if item.UnitPrice.LessThan(decimal.Zero) || item.TaxRate.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: line item amounts must not be negative", apperrors.ErrValidation)
		}
		items[i] = domain.RecurringLineItem{
			LineItemID:         uuid.NewString(),
			RecurringInvoiceID: recurringID,
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			TaxRate:            item.TaxRate,
		}
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(domain.LineAmount(item.Quantity, item.UnitPrice, item.TaxRate))
	}
	// A zero-total template would mint invoices that can never settle.
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: template total must be positive", apperrors.ErrValidation)
	}

	template := domain.RecurringInvoice{
		RecurringInvoiceID:   recurringID,
		ClientID:             req.ClientID,
		Title:                req.Title,
		Description:          req.Description,
		Frequency:            frequency,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		MaxOccurrences:       req.MaxOccurrences,
		NextDate:             req.StartDate,
		OccurrencesGenerated: 0,
		PaymentTermDays:      paymentTermDays,
		Status:               domain.RecurringActive,
		LineItems:            items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.recurringRepo.SaveRecurringInvoice(ctx, template); err != nil {
		s.LogError(ctx, err, "Failed to save recurring template", slog.String("client_id", req.ClientID))
		return nil, fmt.Errorf("failed to save recurring invoice: %w", err)
	}

	s.LogInfo(ctx, "Recurring template created",
		slog.String("recurring_invoice_id", recurringID),
		slog.String("frequency", string(frequency)))
	return &template, nil
}

// GetRecurringInvoiceByID retrieves a template with its line-item snapshot.
func (s *recurringService) GetRecurringInvoiceByID(ctx context.Context, recurringID string) (*domain.RecurringInvoice, error) {
	template, err := s.recurringRepo.FindRecurringInvoiceByID(ctx, recurringID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find recurring template", slog.String("recurring_invoice_id", recurringID))
		}
		return nil, err
	}
	return template, nil
}

// ListRecurringInvoices retrieves a token-paginated page of templates.
func (s *recurringService) ListRecurringInvoices(ctx context.Context, params dto.ListRecurringInvoicesParams) (*dto.ListRecurringInvoicesResponse, error) {
	var status *domain.RecurringStatus
	if params.Status != nil {
		st := domain.RecurringStatus(*params.Status)
		status = &st
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	templates, nextToken, err := s.recurringRepo.ListRecurringInvoices(ctx, status, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recurring templates")
		return nil, fmt.Errorf("failed to retrieve recurring invoices: %w", err)
	}

	return &dto.ListRecurringInvoicesResponse{
		RecurringInvoices: dto.ToRecurringInvoiceResponses(templates),
		NextToken:         nextToken,
	}, nil
}

// CancelRecurringInvoice stops future generation. Invoices already generated
// from the template are untouched.
func (s *recurringService) CancelRecurringInvoice(ctx context.Context, recurringID string, actorID string) (*domain.RecurringInvoice, error) {
	template, err := s.recurringRepo.FindRecurringInvoiceByID(ctx, recurringID)
	if err != nil {
		return nil, err
	}
	if template.Status == domain.RecurringCanceled {
		return nil, fmt.Errorf("%w: recurring invoice %s is already canceled", apperrors.ErrInvalidState, recurringID)
	}

	now := time.Now().UTC()
	if err := s.recurringRepo.UpdateRecurringStatus(ctx, recurringID, domain.RecurringCanceled, actorID, now); err != nil {
		s.LogError(ctx, err, "Failed to cancel recurring template", slog.String("recurring_invoice_id", recurringID))
		return nil, fmt.Errorf("failed to cancel recurring invoice: %w", err)
	}
	template.Status = domain.RecurringCanceled
	template.LastUpdatedAt = now
	template.LastUpdatedBy = actorID

	s.LogInfo(ctx, "Recurring template canceled", slog.String("recurring_invoice_id", recurringID))
	return template, nil
}

// ReactivateRecurringInvoice resumes a canceled template. The schedule is
// fast-forwarded past now so no catch-up invoices are generated for the
// canceled period.
func (s *recurringService) ReactivateRecurringInvoice(ctx context.Context, recurringID string, actorID string) (*domain.RecurringInvoice, error) {
	template, err := s.recurringRepo.FindRecurringInvoiceByID(ctx, recurringID)
	if err != nil {
		return nil, err
	}
	if template.Status != domain.RecurringCanceled {
		return nil, fmt.Errorf("%w: recurring invoice %s is not canceled", apperrors.ErrInvalidState, recurringID)
	}
	if template.MaxOccurrences != nil && template.OccurrencesGenerated >= *template.MaxOccurrences {
		return nil, fmt.Errorf("%w: recurring invoice %s has reached its occurrence limit", apperrors.ErrInvalidState, recurringID)
	}

	now := time.Now().UTC()
	anchorDay := template.StartDate.Day()
	nextDate := template.NextDate
	for !domain.StartOfDay(nextDate).After(domain.StartOfDay(now)) {
		nextDate = template.Frequency.Advance(nextDate, anchorDay)
	}
	if template.EndDate != nil && domain.StartOfDay(nextDate).After(domain.StartOfDay(*template.EndDate)) {
		return nil, fmt.Errorf("%w: recurring invoice %s has passed its end date", apperrors.ErrInvalidState, recurringID)
	}

	if err := s.recurringRepo.ReactivateRecurring(ctx, recurringID, nextDate, actorID, now); err != nil {
		s.LogError(ctx, err, "Failed to reactivate recurring template", slog.String("recurring_invoice_id", recurringID))
		return nil, fmt.Errorf("failed to reactivate recurring invoice: %w", err)
	}
	template.Status = domain.RecurringActive
	template.NextDate = nextDate
	template.LastUpdatedAt = now
	template.LastUpdatedBy = actorID

	s.LogInfo(ctx, "Recurring template reactivated",
		slog.String("recurring_invoice_id", recurringID),
		slog.Time("next_date", nextDate))
	return template, nil
}

// GenerateDueInvoices materializes one draft invoice per due template. Each
// template runs in its own transaction with its own timeout; one failure is
// recorded and never aborts the batch.
func (s *recurringService) GenerateDueInvoices(ctx context.Context, now time.Time) domain.JobResult {
	result := domain.JobResult{}

	templates, err := s.recurringRepo.ListDueTemplates(ctx, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list due templates")
		result.Errors = append(result.Errors, fmt.Sprintf("list due templates: %v", err))
		return result
	}

	for i := range templates {
		template := templates[i]
		result.Processed++

		itemCtx, cancel := context.WithTimeout(ctx, s.jobItemTimeout)
		generated, err := s.generateFromTemplate(itemCtx, template, now)
		cancel()
		if err != nil {
			s.LogError(ctx, err, "Template generation failed",
				slog.String("recurring_invoice_id", template.RecurringInvoiceID))
			result.Errors = append(result.Errors, fmt.Sprintf("template %s: %v", template.RecurringInvoiceID, err))
			continue
		}
		if generated {
			result.Generated++
		}
	}

	if result.Generated > 0 {
		clearReportCache(ctx, s.cache)
	}
	s.LogInfo(ctx, "Recurring generation tick finished",
		slog.Int("processed", result.Processed),
		slog.Int("generated", result.Generated),
		slog.Int("errors", len(result.Errors)))
	return result
}

// generateFromTemplate handles one due template: cancels exhausted templates,
// otherwise builds the invoice and commits it with the advanced schedule.
// Returns whether an invoice was generated.
func (s *recurringService) generateFromTemplate(ctx context.Context, template domain.RecurringInvoice, now time.Time) (bool, error) {
	if template.Exhausted() {
		if err := s.recurringRepo.UpdateRecurringStatus(ctx, template.RecurringInvoiceID, domain.RecurringCanceled, middleware.SystemActor, now); err != nil {
			return false, fmt.Errorf("cancel exhausted template: %w", err)
		}
		s.LogInfo(ctx, "Exhausted template canceled", slog.String("recurring_invoice_id", template.RecurringInvoiceID))
		return false, nil
	}

	invoiceID := uuid.NewString()
	items := make([]domain.LineItem, len(template.LineItems))
	for i, snap := range template.LineItems {
		items[i] = domain.LineItem{
			LineItemID:  uuid.NewString(),
			InvoiceID:   invoiceID,
			Description: snap.Description,
			Quantity:    snap.Quantity,
			UnitPrice:   snap.UnitPrice,
			TaxRate:     snap.TaxRate,
			Amount:      domain.LineAmount(snap.Quantity, snap.UnitPrice, snap.TaxRate),
			CreatedAt:   now,
		}
	}
	subtotal, tax, total := domain.ComputeTotals(items)

	generationDate := domain.StartOfDay(template.NextDate)
	recurringID := template.RecurringInvoiceID
	invoice := domain.Invoice{
		InvoiceID:          invoiceID,
		ClientID:           template.ClientID,
		Title:              template.Title,
		Description:        template.Description,
		Status:             domain.InvoiceDraft,
		Subtotal:           subtotal,
		TaxAmount:          tax,
		TotalAmount:        total,
		AmountPaid:         decimal.Zero,
		DueDate:            generationDate.AddDate(0, 0, template.PaymentTermDays),
		RecurringInvoiceID: &recurringID,
		LineItems:          items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     middleware.SystemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: middleware.SystemActor,
		},
	}

	// The anchor day is the template's start day, so month-end clamping never
	// drifts the schedule off its original day-of-month.
	template.NextDate = template.Frequency.Advance(template.NextDate, template.StartDate.Day())
	template.OccurrencesGenerated++
	template.LastUpdatedAt = now
	template.LastUpdatedBy = middleware.SystemActor

	saved, err := s.recurringRepo.GenerateInvoice(ctx, invoice, template)
	if err != nil {
		return false, fmt.Errorf("generate invoice: %w", err)
	}

	s.LogInfo(ctx, "Invoice generated from template",
		slog.String("recurring_invoice_id", template.RecurringInvoiceID),
		slog.String("invoice_id", saved.InvoiceID),
		slog.String("invoice_number", saved.InvoiceNumber),
		slog.Time("next_date", template.NextDate))
	return true, nil
}
