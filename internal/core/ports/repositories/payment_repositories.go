package repositories

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// PaymentRepositoryFacade is the persistence contract for the payment ledger.
// RecordPayment and VoidPayment are the only writers of an invoice's
// amount_paid; both span the payment and invoice rows in a single transaction
// so a failure partway leaves both tables unchanged.
type PaymentRepositoryFacade interface {
	// RecordPayment inserts the payment and updates the owning invoice's
	// amount_paid and derived status atomically. Fails with ErrNotFound,
	// ErrInvalidState (canceled invoice) or ErrOverpayment.
	RecordPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, *domain.Invoice, error)

	// VoidPayment deletes the payment and reverses its effect on the owning
	// invoice (amount_paid floored at zero, status re-derived, paid_at
	// cleared when no longer fully paid) atomically.
	VoidPayment(ctx context.Context, paymentID string, voidedBy string, voidedAt time.Time) (*domain.Invoice, error)

	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPayments returns a filtered page of payments plus the next-page token.
	ListPayments(ctx context.Context, filter domain.PaymentFilter, limit int, nextToken *string) ([]domain.Payment, *string, error)

	// GetPaymentStatistics aggregates the ledger; zero rows yield zeros.
	GetPaymentStatistics(ctx context.Context, filter domain.PaymentFilter) (*domain.PaymentStatistics, error)

	FindPaymentMethodByID(ctx context.Context, methodID string) (*domain.PaymentMethod, error)
}
