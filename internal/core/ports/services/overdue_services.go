package services

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

// OverdueSvcFacade detects overdue invoices and applies late fees.
type OverdueSvcFacade interface {
	// DetectOverdue relabels SENT/PARTIAL invoices past due as OVERDUE.
	// Pure status relabeling, idempotent; running it twice changes nothing
	// the second time.
	DetectOverdue(ctx context.Context, now time.Time) domain.JobResult

	ListOverdueInvoices(ctx context.Context, now time.Time) ([]domain.Invoice, error)

	// ApplyLateFee appends a fee line item (fixed or percentage of the
	// current total) to an overdue invoice and recomputes totals through the
	// same transactional path as any total change.
	ApplyLateFee(ctx context.Context, invoiceID string, req dto.ApplyLateFeeRequest, actorID string) (*domain.Invoice, error)

	// ApplyLateFees is the weekly tick: applies the configured policy fee to
	// overdue invoices that do not yet carry one, and sends reminders.
	// Per-invoice failures are collected, never aborting the batch.
	ApplyLateFees(ctx context.Context, now time.Time) domain.JobResult
}
