package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus indicates where an invoice sits in its lifecycle.
type InvoiceStatus string

const (
	InvoiceDraft    InvoiceStatus = "DRAFT"
	InvoiceSent     InvoiceStatus = "SENT"
	InvoicePartial  InvoiceStatus = "PARTIAL"
	InvoicePaid     InvoiceStatus = "PAID"
	InvoiceOverdue  InvoiceStatus = "OVERDUE"
	InvoiceCanceled InvoiceStatus = "CANCELED"
)

// LineItem is a single billable line on an invoice. Late fees are stored as
// flagged line items so they stay auditable and are never confused with payments.
type LineItem struct {
	LineItemID  string          `json:"lineItemID"`
	InvoiceID   string          `json:"invoiceID"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"` // fraction, e.g. 0.19 for 19%
	Amount      decimal.Decimal `json:"amount"`  // quantity * unitPrice * (1 + taxRate)
	IsLateFee   bool            `json:"isLateFee"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Invoice is the aggregate holding monetary totals and lifecycle state.
// AmountPaid is owned by the payment ledger; every mutation to it happens
// inside the same database transaction as the related payment row.
type Invoice struct {
	InvoiceID          string          `json:"invoiceID"`
	InvoiceNumber      string          `json:"invoiceNumber"` // unique, immutable once assigned
	ClientID           string          `json:"clientID"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Status             InvoiceStatus   `json:"status"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	AmountPaid         decimal.Decimal `json:"amountPaid"`
	DueDate            time.Time       `json:"dueDate"`
	PaidAt             *time.Time      `json:"paidAt,omitempty"`
	RecurringInvoiceID *string         `json:"recurringInvoiceID,omitempty"`
	LineItems          []LineItem      `json:"lineItems,omitempty"`
	AuditFields
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status   *InvoiceStatus
	ClientID *string
	FromDate *time.Time
	ToDate   *time.Time
}

// ComputeTotals derives subtotal, tax and total from a set of line items.
// subtotal = sum(qty * price), tax = sum(line subtotal * tax rate).
func ComputeTotals(items []LineItem) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	tax = decimal.Zero
	for _, item := range items {
		lineSubtotal := item.Quantity.Mul(item.UnitPrice)
		subtotal = subtotal.Add(lineSubtotal)
		tax = tax.Add(lineSubtotal.Mul(item.TaxRate))
	}
	return subtotal, tax, subtotal.Add(tax)
}

// LineAmount computes the gross amount of a single line item.
func LineAmount(quantity, unitPrice, taxRate decimal.Decimal) decimal.Decimal {
	lineSubtotal := quantity.Mul(unitPrice)
	return lineSubtotal.Add(lineSubtotal.Mul(taxRate))
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsPastDue reports whether a due date has passed as of now.
// An invoice due today is not yet past due.
func IsPastDue(dueDate, now time.Time) bool {
	return StartOfDay(dueDate).Before(StartOfDay(now))
}

// DeriveStatus is the single source of truth for payment- and time-driven
// status transitions. Every mutator (payment record, payment void, overdue
// detection, late-fee application) derives the post-mutation status through
// this function so the rules cannot drift between call sites.
//
// Rules:
//   - CANCELED is terminal.
//   - amountPaid == totalAmount (and > 0) means PAID.
//   - any partial balance past the due date means OVERDUE.
//   - a partial balance before the due date means PARTIAL.
//   - with nothing paid, SENT/PARTIAL/OVERDUE invoices past due are OVERDUE;
//     otherwise the current status is kept (DRAFT stays DRAFT).
func DeriveStatus(totalAmount, amountPaid decimal.Decimal, dueDate time.Time, current InvoiceStatus, now time.Time) InvoiceStatus {
	if current == InvoiceCanceled {
		return InvoiceCanceled
	}
	if amountPaid.GreaterThan(decimal.Zero) && amountPaid.GreaterThanOrEqual(totalAmount) {
		return InvoicePaid
	}
	if amountPaid.GreaterThan(decimal.Zero) {
		if IsPastDue(dueDate, now) {
			return InvoiceOverdue
		}
		return InvoicePartial
	}
	// Nothing paid.
	switch current {
	case InvoiceSent, InvoicePartial, InvoiceOverdue, InvoicePaid:
		if IsPastDue(dueDate, now) {
			return InvoiceOverdue
		}
		return InvoiceSent
	default:
		return current
	}
}

// HasLateFee reports whether any line item on the invoice is a late fee.
func (i *Invoice) HasLateFee() bool {
	for _, item := range i.LineItems {
		if item.IsLateFee {
			return true
		}
	}
	return false
}

// Outstanding returns the unpaid balance, floored at zero.
func (i *Invoice) Outstanding() decimal.Decimal {
	balance := i.TotalAmount.Sub(i.AmountPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
