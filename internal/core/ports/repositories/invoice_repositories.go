package repositories

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// InvoiceRepositoryFacade is the persistence contract for invoices and their
// line items. Every money-touching mutation commits invoice and line-item
// rows in one database transaction.
type InvoiceRepositoryFacade interface {
	// SaveInvoice inserts the invoice and its line items, assigning the
	// immutable invoice number from the database sequence.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)

	// FindInvoiceByID returns the invoice with its line items.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices returns a filtered page of invoices plus the next-page token.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter, limit int, nextToken *string) ([]domain.Invoice, *string, error)

	// UpdateInvoiceDetails replaces title, description, due date and the
	// non-late-fee line items, recomputing totals, within one transaction.
	// Fails with ErrOverpayment if the new total would undercut amount paid.
	UpdateInvoiceDetails(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)

	// UpdateInvoiceStatus performs a pure status relabeling (send).
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error

	// CancelInvoice cancels the invoice inside one transaction holding the
	// row lock, refusing with ErrInvalidState when the invoice is paid,
	// already canceled, or any ledger payment exists.
	CancelInvoice(ctx context.Context, invoiceID string, canceledBy string, canceledAt time.Time) (*domain.Invoice, error)

	// DeleteInvoice removes a draft invoice and its line items.
	DeleteInvoice(ctx context.Context, invoiceID string) error

	// MarkOverdueInvoices relabels SENT/PARTIAL invoices past due as OVERDUE.
	// Idempotent; returns the number of invoices transitioned.
	MarkOverdueInvoices(ctx context.Context, asOf time.Time, updatedBy string) (int64, error)

	// ListOverdueInvoices returns overdue invoices with their line items.
	ListOverdueInvoices(ctx context.Context, asOf time.Time) ([]domain.Invoice, error)

	// ApplyLateFee appends the fee line item and recomputes totals inside one
	// transaction holding the invoice row lock.
	ApplyLateFee(ctx context.Context, invoiceID string, fee domain.LineItem, updatedBy string, updatedAt time.Time) (*domain.Invoice, error)
}
