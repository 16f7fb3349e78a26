package services

import (
	"context"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

// PaymentSvcFacade is the payment ledger: the only writer of amount_paid and
// of payment-driven status changes.
type PaymentSvcFacade interface {
	// RecordPayment appends a ledger entry and transitions the invoice per
	// the derived status. Either both rows commit or neither does.
	RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest, creatorID string) (*domain.Payment, *domain.Invoice, error)

	// VoidPayment reverses a recorded payment exactly; record followed by
	// void restores the invoice's amount_paid and status.
	VoidPayment(ctx context.Context, paymentID string, voiderID string) (*domain.Invoice, error)

	ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)

	GetPaymentStatistics(ctx context.Context, params dto.PaymentStatisticsParams) (*domain.PaymentStatistics, error)
}
