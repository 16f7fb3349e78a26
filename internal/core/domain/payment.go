package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one append-only ledger entry against an invoice. The sum of an
// invoice's payments is the source of truth for its AmountPaid.
type Payment struct {
	PaymentID   string          `json:"paymentID"`
	InvoiceID   string          `json:"invoiceID"`
	Amount      decimal.Decimal `json:"amount"` // strictly positive
	MethodID    string          `json:"methodID"`
	PaymentDate time.Time       `json:"paymentDate"`
	Reference   *string         `json:"reference,omitempty"` // external transaction id
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy"`
}

// PaymentMethod is a closed reference set consumed by payments but not
// mutated by this core.
type PaymentMethod struct {
	MethodID string `json:"methodID"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// PaymentFilter narrows payment listings and statistics.
type PaymentFilter struct {
	InvoiceID *string
	ClientID  *string
	MethodID  *string
	FromDate  *time.Time
	ToDate    *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// PaymentStatistics is a read-only rollup over the payment ledger.
type PaymentStatistics struct {
	Count         int64                      `json:"count"`
	TotalAmount   decimal.Decimal            `json:"totalAmount"`
	AverageAmount decimal.Decimal            `json:"averageAmount"`
	ByMethod      map[string]decimal.Decimal `json:"byMethod"`
}
