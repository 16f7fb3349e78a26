package repositories

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// RecurringRepositoryFacade is the persistence contract for recurring
// invoice templates and the scheduled generation of invoices from them.
type RecurringRepositoryFacade interface {
	SaveRecurringInvoice(ctx context.Context, template domain.RecurringInvoice) error

	// FindRecurringInvoiceByID returns the template with its line-item snapshot.
	FindRecurringInvoiceByID(ctx context.Context, recurringID string) (*domain.RecurringInvoice, error)

	ListRecurringInvoices(ctx context.Context, status *domain.RecurringStatus, limit int, nextToken *string) ([]domain.RecurringInvoice, *string, error)

	// ListDueTemplates returns active templates with next_date <= asOf,
	// line items included.
	ListDueTemplates(ctx context.Context, asOf time.Time) ([]domain.RecurringInvoice, error)

	// ListActiveTemplates returns every active template (for forecasting).
	ListActiveTemplates(ctx context.Context) ([]domain.RecurringInvoice, error)

	UpdateRecurringStatus(ctx context.Context, recurringID string, status domain.RecurringStatus, updatedBy string, updatedAt time.Time) error

	// ReactivateRecurring flips the template back to active together with its
	// fast-forwarded next date in one write, so the schedule and status can
	// never end up out of step.
	ReactivateRecurring(ctx context.Context, recurringID string, nextDate time.Time, updatedBy string, updatedAt time.Time) error

	// GenerateInvoice persists a generated invoice together with the advanced
	// template schedule in one transaction per template, so a failure for one
	// template never leaves a half-generated pair behind.
	GenerateInvoice(ctx context.Context, invoice domain.Invoice, template domain.RecurringInvoice) (*domain.Invoice, error)
}
