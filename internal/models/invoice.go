package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the persisted lifecycle state of an invoice.
type InvoiceStatus string

const (
	Draft    InvoiceStatus = "DRAFT"
	Sent     InvoiceStatus = "SENT"
	Partial  InvoiceStatus = "PARTIAL"
	Paid     InvoiceStatus = "PAID"
	Overdue  InvoiceStatus = "OVERDUE"
	Canceled InvoiceStatus = "CANCELED"
)

// Invoice is one row of the invoices table. Monetary columns are NUMERIC and
// always scanned into decimals, never floats.
type Invoice struct {
	InvoiceID          string          `db:"invoice_id"`
	InvoiceNumber      string          `db:"invoice_number"`
	ClientID           string          `db:"client_id"`
	Title              string          `db:"title"`
	Description        string          `db:"description"`
	Status             InvoiceStatus   `db:"status"`
	Subtotal           decimal.Decimal `db:"subtotal"`
	TaxAmount          decimal.Decimal `db:"tax_amount"`
	TotalAmount        decimal.Decimal `db:"total_amount"`
	AmountPaid         decimal.Decimal `db:"amount_paid"`
	DueDate            time.Time       `db:"due_date"`
	PaidAt             *time.Time      `db:"paid_at"`              // set when fully paid, cleared on void
	RecurringInvoiceID *string         `db:"recurring_invoice_id"` // Nullable: set on generated invoices
	AuditFields
}

// InvoiceLineItem is one row of the invoice_line_items table.
type InvoiceLineItem struct {
	LineItemID  string          `db:"line_item_id"`
	InvoiceID   string          `db:"invoice_id"`
	Description string          `db:"description"`
	Quantity    decimal.Decimal `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	Amount      decimal.Decimal `db:"amount"`
	IsLateFee   bool            `db:"is_late_fee"`
	CreatedAt   time.Time       `db:"created_at"`
}
