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
	"github.com/BizPilotApp/bizpilot_backend/internal/platform/config"
)

const (
	feeTypeFixed      = "FIXED"
	feeTypePercentage = "PERCENTAGE"
)

// overdueService relabels past-due invoices and applies late fees per the
// configured policy.
type overdueService struct {
	BaseService
	invoiceRepo    portsrepo.InvoiceRepositoryFacade
	clientDir      portssvc.ClientDirectorySvc
	notification   portssvc.NotificationSvc
	cache          portssvc.CacheSvc
	lateFeeType    string
	lateFeeValue   decimal.Decimal
	jobItemTimeout time.Duration
}

// NewOverdueService creates a new OverdueService. The late fee policy comes
// from configuration; an unparsable value disables the weekly fee job.
func NewOverdueService(
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	clientDir portssvc.ClientDirectorySvc,
	notification portssvc.NotificationSvc,
	cache portssvc.CacheSvc,
	cfg *config.Config,
) portssvc.OverdueSvcFacade {
	feeValue, err := decimal.NewFromString(cfg.LateFeeValue)
	if err != nil || feeValue.LessThanOrEqual(decimal.Zero) {
		slog.Warn("Late fee policy disabled, invalid LATE_FEE_VALUE", slog.String("value", cfg.LateFeeValue))
		feeValue = decimal.Zero
	}
	jobItemTimeout := cfg.JobItemTimeout
	if jobItemTimeout <= 0 {
		jobItemTimeout = 30 * time.Second
	}
	return &overdueService{
		invoiceRepo:    invoiceRepo,
		clientDir:      clientDir,
		notification:   notification,
		cache:          cache,
		lateFeeType:    cfg.LateFeeType,
		lateFeeValue:   feeValue,
		jobItemTimeout: jobItemTimeout,
	}
}

var _ portssvc.OverdueSvcFacade = (*overdueService)(nil)

// DetectOverdue relabels all sent/partial invoices past due as of now. The
// underlying UPDATE only matches invoices not already overdue, so repeated
// runs are no-ops.
func (s *overdueService) DetectOverdue(ctx context.Context, now time.Time) domain.JobResult {
	result := domain.JobResult{}

	count, err := s.invoiceRepo.MarkOverdueInvoices(ctx, now, middleware.SystemActor)
	if err != nil {
		s.LogError(ctx, err, "Failed to mark overdue invoices")
		result.Errors = append(result.Errors, fmt.Sprintf("mark overdue: %v", err))
		return result
	}

	result.Processed = int(count)
	if count > 0 {
		clearReportCache(ctx, s.cache)
	}
	s.LogInfo(ctx, "Overdue detection tick finished", slog.Int("transitioned", result.Processed))
	return result
}

// ListOverdueInvoices returns all overdue invoices as of now.
func (s *overdueService) ListOverdueInvoices(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.ListOverdueInvoices(ctx, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list overdue invoices")
		return nil, fmt.Errorf("failed to retrieve overdue invoices: %w", err)
	}
	return invoices, nil
}

// computeFee resolves the fee amount for an invoice under the given policy.
func computeFee(feeType string, value decimal.Decimal, invoice *domain.Invoice) (decimal.Decimal, error) {
	switch feeType {
	case feeTypeFixed:
		return value, nil
	case feeTypePercentage:
		return invoice.TotalAmount.Mul(value).Div(decimal.NewFromInt(100)).Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported fee type %q", apperrors.ErrValidation, feeType)
	}
}

// ApplyLateFee appends a fee line item to an overdue invoice and recomputes
// its totals transactionally.
func (s *overdueService) ApplyLateFee(ctx context.Context, invoiceID string, req dto.ApplyLateFeeRequest, actorID string) (*domain.Invoice, error) {
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: fee value %q is not a valid decimal", apperrors.ErrValidation, req.Value)
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fee value must be positive", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceOverdue {
		return nil, fmt.Errorf("%w: invoice %s is %s, late fees apply to overdue invoices only",
			apperrors.ErrInvalidState, invoiceID, invoice.Status)
	}

	fee, err := computeFee(req.FeeType, value, invoice)
	if err != nil {
		return nil, err
	}

	updated, err := s.appendFee(ctx, invoice, fee, req.FeeType, actorID)
	if err != nil {
		return nil, err
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Late fee applied",
		slog.String("invoice_id", invoiceID),
		slog.String("fee", fee.String()),
		slog.String("fee_type", req.FeeType))
	return updated, nil
}

func (s *overdueService) appendFee(ctx context.Context, invoice *domain.Invoice, fee decimal.Decimal, feeType string, actorID string) (*domain.Invoice, error) {
	now := time.Now().UTC()
	item := domain.LineItem{
		LineItemID:  uuid.NewString(),
		InvoiceID:   invoice.InvoiceID,
		Description: fmt.Sprintf("Late fee (%s)", feeType),
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   fee,
		TaxRate:     decimal.Zero,
		Amount:      fee,
		IsLateFee:   true,
		CreatedAt:   now,
	}

	updated, err := s.invoiceRepo.ApplyLateFee(ctx, invoice.InvoiceID, item, actorID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidState) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to apply late fee", slog.String("invoice_id", invoice.InvoiceID))
		return nil, fmt.Errorf("failed to apply late fee: %w", err)
	}
	return updated, nil
}

// ApplyLateFees applies the configured policy fee to every overdue invoice
// not yet carrying one, and sends a reminder mail per invoice. Failures are
// isolated per invoice.
func (s *overdueService) ApplyLateFees(ctx context.Context, now time.Time) domain.JobResult {
	result := domain.JobResult{}

	if s.lateFeeValue.IsZero() {
		s.LogWarn(ctx, "Late fee tick skipped, no fee policy configured")
		return result
	}

	invoices, err := s.invoiceRepo.ListOverdueInvoices(ctx, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list overdue invoices for fee tick")
		result.Errors = append(result.Errors, fmt.Sprintf("list overdue: %v", err))
		return result
	}

	for i := range invoices {
		invoice := invoices[i]
		if invoice.HasLateFee() {
			continue
		}
		result.Processed++

		itemCtx, cancel := context.WithTimeout(ctx, s.jobItemTimeout)
		err := s.applyPolicyFee(itemCtx, &invoice)
		cancel()
		if err != nil {
			s.LogError(ctx, err, "Late fee application failed", slog.String("invoice_id", invoice.InvoiceID))
			result.Errors = append(result.Errors, fmt.Sprintf("invoice %s: %v", invoice.InvoiceID, err))
			continue
		}
		result.Generated++
	}

	if result.Generated > 0 {
		clearReportCache(ctx, s.cache)
	}
	s.LogInfo(ctx, "Late fee tick finished",
		slog.Int("processed", result.Processed),
		slog.Int("applied", result.Generated),
		slog.Int("errors", len(result.Errors)))
	return result
}

func (s *overdueService) applyPolicyFee(ctx context.Context, invoice *domain.Invoice) error {
	fee, err := computeFee(s.lateFeeType, s.lateFeeValue, invoice)
	if err != nil {
		return err
	}

	updated, err := s.appendFee(ctx, invoice, fee, s.lateFeeType, middleware.SystemActor)
	if err != nil {
		return err
	}

	s.sendReminder(ctx, updated)
	return nil
}

// sendReminder mails an arrears notice. Delivery failure is logged only; the
// fee has already committed.
func (s *overdueService) sendReminder(ctx context.Context, invoice *domain.Invoice) {
	if s.notification == nil {
		return
	}
	client, err := s.clientDir.GetClientByID(ctx, invoice.ClientID)
	if err != nil {
		s.LogWarn(ctx, "Skipping overdue reminder, client lookup failed",
			slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
		return
	}

	subject := fmt.Sprintf("Invoice %s is overdue", invoice.InvoiceNumber)
	body := fmt.Sprintf("Invoice %s was due on %s. The outstanding balance including late fees is %s.",
		invoice.InvoiceNumber, invoice.DueDate.Format("2006-01-02"), invoice.Outstanding().StringFixed(2))
	if err := s.notification.Send(ctx, client.Email, subject, body); err != nil {
		s.LogWarn(ctx, "Failed to send overdue reminder",
			slog.String("invoice_id", invoice.InvoiceID), slog.String("error", err.Error()))
	}
}
