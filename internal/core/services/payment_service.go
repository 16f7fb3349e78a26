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

// paymentService owns the ledger. All writes to an invoice's amount_paid flow
// through here and commit atomically with the payment row.
type paymentService struct {
	BaseService
	paymentRepo portsrepo.PaymentRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	cache       portssvc.CacheSvc
}

// NewPaymentService creates a new PaymentService. The cache may be nil.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade, cache portssvc.CacheSvc) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		cache:       cache,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// RecordPayment validates the request and appends a ledger entry, updating the
// owning invoice in the same transaction.
func (s *paymentService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest, creatorID string) (*domain.Payment, *domain.Invoice, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if req.PaymentDate.IsZero() {
		return nil, nil, fmt.Errorf("%w: payment date is required", apperrors.ErrValidation)
	}

	method, err := s.paymentRepo.FindPaymentMethodByID(ctx, req.MethodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: payment method %s does not exist", apperrors.ErrValidation, req.MethodID)
		}
		s.LogError(ctx, err, "Failed to look up payment method", slog.String("method_id", req.MethodID))
		return nil, nil, fmt.Errorf("failed to verify payment method: %w", err)
	}
	if !method.IsActive {
		return nil, nil, fmt.Errorf("%w: payment method %s is inactive", apperrors.ErrValidation, req.MethodID)
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:   uuid.NewString(),
		InvoiceID:   invoiceID,
		Amount:      req.Amount,
		MethodID:    req.MethodID,
		PaymentDate: req.PaymentDate,
		Reference:   req.Reference,
		Notes:       req.Notes,
		CreatedAt:   now,
		CreatedBy:   creatorID,
	}

	saved, invoice, err := s.paymentRepo.RecordPayment(ctx, payment)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) ||
			errors.Is(err, apperrors.ErrInvalidState) ||
			errors.Is(err, apperrors.ErrOverpayment) {
			return nil, nil, err
		}
		s.LogError(ctx, err, "Failed to record payment",
			slog.String("invoice_id", invoiceID), slog.String("amount", req.Amount.String()))
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", saved.PaymentID),
		slog.String("invoice_id", invoiceID),
		slog.String("amount", saved.Amount.String()),
		slog.String("invoice_status", string(invoice.Status)))
	return saved, invoice, nil
}

// VoidPayment reverses a recorded payment. The invoice's amount_paid and
// status are restored in the same transaction that removes the ledger row.
func (s *paymentService) VoidPayment(ctx context.Context, paymentID string, voiderID string) (*domain.Invoice, error) {
	now := time.Now().UTC()
	invoice, err := s.paymentRepo.VoidPayment(ctx, paymentID, voiderID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidState) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to void payment", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to void payment: %w", err)
	}

	clearReportCache(ctx, s.cache)
	s.LogInfo(ctx, "Payment voided",
		slog.String("payment_id", paymentID),
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_status", string(invoice.Status)))
	return invoice, nil
}

// ListPayments retrieves a filtered, token-paginated page of ledger entries.
func (s *paymentService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	if params.MinAmount != nil && params.MaxAmount != nil && params.MinAmount.GreaterThan(*params.MaxAmount) {
		return nil, fmt.Errorf("%w: minAmount exceeds maxAmount", apperrors.ErrValidation)
	}

	filter := domain.PaymentFilter{
		InvoiceID: params.InvoiceID,
		ClientID:  params.ClientID,
		MethodID:  params.MethodID,
		FromDate:  params.FromDate,
		ToDate:    params.ToDate,
		MinAmount: params.MinAmount,
		MaxAmount: params.MaxAmount,
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	payments, nextToken, err := s.paymentRepo.ListPayments(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments")
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}

	return &dto.ListPaymentsResponse{
		Payments:  dto.ToPaymentResponses(payments),
		NextToken: nextToken,
	}, nil
}

// GetPaymentStatistics aggregates the ledger for the given filters. An empty
// ledger yields a zeroed rollup, not an error.
func (s *paymentService) GetPaymentStatistics(ctx context.Context, params dto.PaymentStatisticsParams) (*domain.PaymentStatistics, error) {
	filter := domain.PaymentFilter{
		ClientID: params.ClientID,
		MethodID: params.MethodID,
		FromDate: params.FromDate,
		ToDate:   params.ToDate,
	}

	stats, err := s.paymentRepo.GetPaymentStatistics(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute payment statistics")
		return nil, fmt.Errorf("failed to compute payment statistics: %w", err)
	}
	return stats, nil
}
