package services

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// ClientDirectorySvc is the read-only client lookup collaborator.
type ClientDirectorySvc interface {
	GetClientByID(ctx context.Context, clientID string) (*domain.Client, error)
}

// NotificationSvc sends mail on behalf of the billing flows. Failures are
// logged and mapped to ErrExternalService; they are never fatal to a ledger
// operation.
type NotificationSvc interface {
	Send(ctx context.Context, to, subject, body string) error
}

// InvoiceRendererSvc renders a fully-resolved invoice for delivery.
// PDF rendering stays outside this core; the HTML body feeds the mails.
type InvoiceRendererSvc interface {
	RenderInvoiceHTML(invoice domain.Invoice, client domain.Client) (string, error)
}

// CacheSvc is the reporting cache collaborator. A nil cache degrades to
// direct computation, not failure.
type CacheSvc interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	ClearPattern(ctx context.Context, pattern string)
}
