package services

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

// RecurringSvcFacade manages recurring invoice templates and drives the
// scheduled generation of draft invoices from them.
type RecurringSvcFacade interface {
	CreateRecurringInvoice(ctx context.Context, req dto.CreateRecurringInvoiceRequest, creatorID string) (*domain.RecurringInvoice, error)

	GetRecurringInvoiceByID(ctx context.Context, recurringID string) (*domain.RecurringInvoice, error)

	ListRecurringInvoices(ctx context.Context, params dto.ListRecurringInvoicesParams) (*dto.ListRecurringInvoicesResponse, error)

	// CancelRecurringInvoice stops future generation; already-generated
	// invoices are untouched.
	CancelRecurringInvoice(ctx context.Context, recurringID string, actorID string) (*domain.RecurringInvoice, error)

	// ReactivateRecurringInvoice resumes generation, fast-forwarding
	// next_date past now without generating catch-up invoices. Refused when
	// the template's end conditions are already exhausted.
	ReactivateRecurringInvoice(ctx context.Context, recurringID string, actorID string) (*domain.RecurringInvoice, error)

	// GenerateDueInvoices is the daily tick: one generation per due template,
	// each isolated in its own transaction; failures are collected, not thrown.
	GenerateDueInvoices(ctx context.Context, now time.Time) domain.JobResult
}
