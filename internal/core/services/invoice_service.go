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
)

// invoiceService drives the non-monetary invoice lifecycle. Payment-driven
// transitions go through the payment ledger service.
type invoiceService struct {
	BaseService
	invoiceRepo  portsrepo.InvoiceRepositoryFacade
	clientDir    portssvc.ClientDirectorySvc
	paymentSvc   portssvc.PaymentSvcFacade
	notification portssvc.NotificationSvc
	renderer     portssvc.InvoiceRendererSvc
	cache        portssvc.CacheSvc
}

// InvoiceServiceOption is a functional option for configuring the invoice service.
type InvoiceServiceOption func(*invoiceService)

// WithNotification sets the mail sender used when sending invoices.
func WithNotification(n portssvc.NotificationSvc) InvoiceServiceOption {
	return func(s *invoiceService) { s.notification = n }
}

// WithRenderer sets the invoice renderer used for mail bodies.
func WithRenderer(r portssvc.InvoiceRendererSvc) InvoiceServiceOption {
	return func(s *invoiceService) { s.renderer = r }
}

// WithPaymentService sets the ledger service used by MarkAsPaid.
func WithPaymentService(p portssvc.PaymentSvcFacade) InvoiceServiceOption {
	return func(s *invoiceService) { s.paymentSvc = p }
}

// WithReportCache sets the reporting cache cleared on invoice mutations.
func WithReportCache(c portssvc.CacheSvc) InvoiceServiceOption {
	return func(s *invoiceService) { s.cache = c }
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	clientDir portssvc.ClientDirectorySvc,
	options ...InvoiceServiceOption,
) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{
		invoiceRepo: invoiceRepo,
		clientDir:   clientDir,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// buildLineItems validates and converts request line items, computing per-line amounts.
func buildLineItems(invoiceID string, reqItems []dto.LineItemRequest, now time.Time) ([]domain.LineItem, error) {
	if len(reqItems) == 0 {
		return nil, fmt.Errorf("%w: invoice requires at least one line item", apperrors.ErrValidation)
	}
	items := make([]domain.LineItem, len(reqItems))
	for i, req := range reqItems {
		if req.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line item quantity must be positive", apperrors.ErrValidation)
		}
		if req.UnitPrice.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: line item unit price must not be negative", apperrors.ErrValidation)
		}
		if req.TaxRate.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: line item tax rate must not be negative", apperrors.ErrValidation)
		}
		items[i] = domain.LineItem{
			LineItemID:  uuid.NewString(),
			InvoiceID:   invoiceID,
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			TaxRate:     req.TaxRate,
			Amount:      domain.LineAmount(req.Quantity, req.UnitPrice, req.TaxRate),
			CreatedAt:   now,
		}
	}
	return items, nil
}

// CreateInvoice creates a new draft invoice with totals computed from its line items.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorID string) (*domain.Invoice, error) {
	if req.ClientID == "" {
		return nil, fmt.Errorf("%w: client reference is required", apperrors.ErrValidation)
	}

	// The client must exist in the directory; invoices store the reference only.
	if _, err := s.clientDir.GetClientByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s does not exist", apperrors.ErrValidation, req.ClientID)
		}
		s.LogError(ctx, err, "Failed to look up client for invoice creation", slog.String("client_id", req.ClientID))
		return nil, fmt.Errorf("failed to verify client: %w", err)
	}

	now := time.Now().UTC()
	invoiceID := uuid.NewString()

	items, err := buildLineItems(invoiceID, req.LineItems, now)
	if err != nil {
		return nil, err
	}
	subtotal, tax, total := domain.ComputeTotals(items)
	// A zero-total invoice could never settle: paid requires amount_paid > 0.
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: invoice total must be positive", apperrors.ErrValidation)
	}

	invoice := domain.Invoice{
		InvoiceID:   invoiceID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.InvoiceDraft,
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: total,
		AmountPaid:  decimal.Zero,
		DueDate:     req.DueDate,
		LineItems:   items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	saved, err := s.invoiceRepo.SaveInvoice(ctx, invoice)
	if err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("client_id", req.ClientID))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", saved.InvoiceID),
		slog.String("invoice_number", saved.InvoiceNumber),
		slog.String("total", saved.TotalAmount.String()))
	return saved, nil
}

// GetInvoiceByID retrieves an invoice with its line items.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find invoice", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}
	return invoice, nil
}

// ListInvoices retrieves a filtered, token-paginated page of invoices.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	filter := domain.InvoiceFilter{
		ClientID: params.ClientID,
		FromDate: params.FromDate,
		ToDate:   params.ToDate,
	}
	if params.Status != nil {
		status := domain.InvoiceStatus(*params.Status)
		filter.Status = &status
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	invoices, nextToken, err := s.invoiceRepo.ListInvoices(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, fmt.Errorf("failed to retrieve invoices: %w", err)
	}

	return &dto.ListInvoicesResponse{
		Invoices:  dto.ToInvoiceResponses(invoices),
		NextToken: nextToken,
	}, nil
}

// UpdateInvoice rewrites details and line items of a draft or sent invoice.
func (s *invoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, updaterID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status != domain.InvoiceDraft && invoice.Status != domain.InvoiceSent {
		return nil, fmt.Errorf("%w: invoice %s is %s, only draft or sent invoices can be updated",
			apperrors.ErrInvalidState, invoiceID, invoice.Status)
	}

	now := time.Now().UTC()
	if req.Title != nil {
		invoice.Title = *req.Title
	}
	if req.Description != nil {
		invoice.Description = *req.Description
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.LineItems != nil {
		items, err := buildLineItems(invoiceID, *req.LineItems, now)
		if err != nil {
			return nil, err
		}
		invoice.LineItems = items
		invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount = domain.ComputeTotals(items)
		if !invoice.TotalAmount.IsPositive() {
			return nil, fmt.Errorf("%w: invoice total must be positive", apperrors.ErrValidation)
		}
		if invoice.TotalAmount.LessThan(invoice.AmountPaid) {
			return nil, fmt.Errorf("%w: new total %s is below amount already paid %s",
				apperrors.ErrOverpayment, invoice.TotalAmount.String(), invoice.AmountPaid.String())
		}
	}
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = updaterID

	updated, err := s.invoiceRepo.UpdateInvoiceDetails(ctx, *invoice)
	if err != nil {
		s.LogError(ctx, err, "Failed to update invoice", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Invoice updated", slog.String("invoice_id", invoiceID))
	return updated, nil
}

// SendInvoice transitions a draft invoice to sent and emails the client.
func (s *invoiceService) SendInvoice(ctx context.Context, invoiceID string, senderID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status != domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: invoice %s is %s, only draft invoices can be sent",
			apperrors.ErrInvalidState, invoiceID, invoice.Status)
	}

	now := time.Now().UTC()
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, invoiceID, domain.InvoiceSent, senderID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark invoice as sent", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to send invoice: %w", err)
	}
	invoice.Status = domain.InvoiceSent
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = senderID

	// Mail delivery is best effort: the transition stands even if the
	// collaborator fails.
	s.deliverInvoiceMail(ctx, invoice)

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Invoice sent", slog.String("invoice_id", invoiceID), slog.String("invoice_number", invoice.InvoiceNumber))
	return invoice, nil
}

func (s *invoiceService) deliverInvoiceMail(ctx context.Context, invoice *domain.Invoice) {
	if s.notification == nil {
		return
	}
	client, err := s.clientDir.GetClientByID(ctx, invoice.ClientID)
	if err != nil {
		s.LogWarn(ctx, "Skipping invoice mail, client lookup failed",
			slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
		return
	}

	body := fmt.Sprintf("Invoice %s for %s is due on %s.",
		invoice.InvoiceNumber, invoice.TotalAmount.StringFixed(2), invoice.DueDate.Format("2006-01-02"))
	if s.renderer != nil {
		if rendered, err := s.renderer.RenderInvoiceHTML(*invoice, *client); err == nil {
			body = rendered
		} else {
			s.LogWarn(ctx, "Invoice rendering failed, falling back to plain body",
				slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
		}
	}

	subject := fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)
	if err := s.notification.Send(ctx, client.Email, subject, body); err != nil {
		s.LogWarn(ctx, "Failed to send invoice mail",
			slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
	}
}

// CancelInvoice cancels an invoice. Cancellation is disallowed once any
// payment exists; the repository checks the ledger and flips the status
// under the invoice row lock so a concurrent payment cannot slip between
// the check and the write.
func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID string, cancelerID string) (*domain.Invoice, error) {
	canceled, err := s.invoiceRepo.CancelInvoice(ctx, invoiceID, cancelerID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidState) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to cancel invoice", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to cancel invoice: %w", err)
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Invoice canceled", slog.String("invoice_id", invoiceID))
	return canceled, nil
}

// DeleteInvoice removes a draft invoice.
func (s *invoiceService) DeleteInvoice(ctx context.Context, invoiceID string, deleterID string) error {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if invoice.Status != domain.InvoiceDraft {
		return fmt.Errorf("%w: invoice %s is %s, only draft invoices can be deleted",
			apperrors.ErrInvalidState, invoiceID, invoice.Status)
	}

	if err := s.invoiceRepo.DeleteInvoice(ctx, invoiceID); err != nil {
		s.LogError(ctx, err, "Failed to delete invoice", slog.String("invoice_id", invoiceID))
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Invoice deleted", slog.String("invoice_id", invoiceID), slog.String("deleted_by", deleterID))
	return nil
}

// MarkAsPaid settles the outstanding balance by recording a ledger payment
// for the remainder. Status is never written directly here; the ledger's
// transactional path derives it.
func (s *invoiceService) MarkAsPaid(ctx context.Context, invoiceID string, methodID string, actorID string) (*domain.Invoice, error) {
	if s.paymentSvc == nil {
		return nil, fmt.Errorf("%w: payment service unavailable", apperrors.ErrInternal)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	outstanding := invoice.Outstanding()
	if outstanding.IsZero() {
		return nil, fmt.Errorf("%w: invoice %s has no outstanding balance", apperrors.ErrInvalidState, invoiceID)
	}

	req := dto.RecordPaymentRequest{
		Amount:      outstanding,
		MethodID:    methodID,
		PaymentDate: time.Now().UTC(),
		Notes:       "Marked as paid",
	}
	_, updated, err := s.paymentSvc.RecordPayment(ctx, invoiceID, req, actorID)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Invoice marked as paid", slog.String("invoice_id", invoiceID), slog.String("amount", outstanding.String()))
	return updated, nil
}
