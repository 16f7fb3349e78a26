package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoicePayment is one row of the invoice_payments ledger table. Ledger rows
// are append-only; voiding deletes the row inside the same transaction that
// reverses its effect on the invoice.
type InvoicePayment struct {
	PaymentID   string          `db:"payment_id"`
	InvoiceID   string          `db:"invoice_id"`
	Amount      decimal.Decimal `db:"amount"`
	MethodID    string          `db:"method_id"`
	PaymentDate time.Time       `db:"payment_date"`
	Reference   *string         `db:"reference"` // Nullable external reference
	Notes       string          `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
	CreatedBy   string          `db:"created_by"`
}

// PaymentMethod is one row of the payment_methods table.
type PaymentMethod struct {
	MethodID string `db:"method_id"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}
