package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
)

// LedgerEffect is the invoice-side outcome of a ledger mutation: the new
// paid amount, the re-derived status and the paid_at marker. The repository
// applies it to the invoice row in the same transaction as the payment row.
type LedgerEffect struct {
	AmountPaid decimal.Decimal
	Status     InvoiceStatus
	PaidAt     *time.Time
}

// ApplyPayment computes the effect of recording a payment against an invoice.
// Canceled invoices take no payments; a payment that would push amount_paid
// past the total is rejected and the invoice stays untouched. A payment
// against a draft moves it into the billed flow through DeriveStatus. When
// the payment settles the balance, paid_at is stamped with the payment date,
// not the server clock.
func ApplyPayment(invoice Invoice, amount decimal.Decimal, paymentDate, now time.Time) (LedgerEffect, error) {
	if invoice.Status == InvoiceCanceled {
		return LedgerEffect{}, fmt.Errorf("%w: invoice %s is canceled", apperrors.ErrInvalidState, invoice.InvoiceID)
	}
	newPaid := invoice.AmountPaid.Add(amount)
	if newPaid.GreaterThan(invoice.TotalAmount) {
		return LedgerEffect{}, fmt.Errorf("%w: payment of %s exceeds outstanding balance %s",
			apperrors.ErrOverpayment, amount.String(), invoice.Outstanding().String())
	}

	status := DeriveStatus(invoice.TotalAmount, newPaid, invoice.DueDate, invoice.Status, now)
	paidAt := invoice.PaidAt
	if status == InvoicePaid && paidAt == nil {
		t := paymentDate
		paidAt = &t
	}
	return LedgerEffect{AmountPaid: newPaid, Status: status, PaidAt: paidAt}, nil
}

// VoidPayment computes the effect of removing a recorded payment. amount_paid
// is floored at zero and paid_at cleared once the invoice is no longer fully
// paid, so a record followed by a void restores the invoice exactly.
func VoidPayment(invoice Invoice, amount decimal.Decimal, now time.Time) LedgerEffect {
	newPaid := invoice.AmountPaid.Sub(amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}

	status := DeriveStatus(invoice.TotalAmount, newPaid, invoice.DueDate, invoice.Status, now)
	paidAt := invoice.PaidAt
	if status != InvoicePaid {
		paidAt = nil
	}
	return LedgerEffect{AmountPaid: newPaid, Status: status, PaidAt: paidAt}
}
