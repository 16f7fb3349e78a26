package services

import (
	"context"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

// InvoiceSvcFacade drives the invoice lifecycle outside of money movement.
// Payment-driven transitions belong to PaymentSvcFacade.
type InvoiceSvcFacade interface {
	// CreateInvoice creates a DRAFT invoice with totals computed from its
	// line items. Fails with ErrValidation on a missing client or empty
	// line items.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorID string) (*domain.Invoice, error)

	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)

	// UpdateInvoice rewrites details and line items; DRAFT and SENT only.
	UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, updaterID string) (*domain.Invoice, error)

	// SendInvoice transitions DRAFT -> SENT and emails the client. A mail
	// failure is logged, never fatal to the transition.
	SendInvoice(ctx context.Context, invoiceID string, senderID string) (*domain.Invoice, error)

	// CancelInvoice is rejected once any payment exists, preserving ledger
	// integrity, and from terminal states.
	CancelInvoice(ctx context.Context, invoiceID string, cancelerID string) (*domain.Invoice, error)

	// DeleteInvoice is permitted only while DRAFT.
	DeleteInvoice(ctx context.Context, invoiceID string, deleterID string) error

	// MarkAsPaid settles the outstanding balance through the payment ledger;
	// it never writes status directly.
	MarkAsPaid(ctx context.Context, invoiceID string, methodID string, actorID string) (*domain.Invoice, error)
}
