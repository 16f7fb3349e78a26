package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringStatus is the persisted state of a recurring template.
type RecurringStatus string

const (
	RecurringActive   RecurringStatus = "ACTIVE"
	RecurringCanceled RecurringStatus = "CANCELED"
)

// RecurringInvoice is one row of the recurring_invoices table.
type RecurringInvoice struct {
	RecurringInvoiceID   string          `db:"recurring_invoice_id"`
	ClientID             string          `db:"client_id"`
	Title                string          `db:"title"`
	Description          string          `db:"description"`
	Frequency            string          `db:"frequency"`
	StartDate            time.Time       `db:"start_date"`
	EndDate              *time.Time      `db:"end_date"`        // Nullable
	MaxOccurrences       *int            `db:"max_occurrences"` // Nullable
	NextDate             time.Time       `db:"next_date"`
	OccurrencesGenerated int             `db:"occurrences_generated"`
	PaymentTermDays      int             `db:"payment_term_days"`
	Status               RecurringStatus `db:"status"`
	AuditFields
}

// RecurringInvoiceLineItem is one row of the template's line-item snapshot.
type RecurringInvoiceLineItem struct {
	LineItemID         string          `db:"line_item_id"`
	RecurringInvoiceID string          `db:"recurring_invoice_id"`
	Description        string          `db:"description"`
	Quantity           decimal.Decimal `db:"quantity"`
	UnitPrice          decimal.Decimal `db:"unit_price"`
	TaxRate            decimal.Decimal `db:"tax_rate"`
}
