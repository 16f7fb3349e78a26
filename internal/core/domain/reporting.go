package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueSummary is the headline rollup over a period.
type RevenueSummary struct {
	InvoiceCount     int64                   `json:"invoiceCount"`
	CountByStatus    map[InvoiceStatus]int64 `json:"countByStatus"`
	TotalInvoiced    decimal.Decimal         `json:"totalInvoiced"`
	TotalCollected   decimal.Decimal         `json:"totalCollected"`
	TotalOutstanding decimal.Decimal         `json:"totalOutstanding"`
	TotalOverdue     decimal.Decimal         `json:"totalOverdue"`
}

// RevenueTrendPoint is one month's invoiced-versus-collected bucket.
type RevenueTrendPoint struct {
	Month     time.Time       `json:"month"` // first day of the month
	Invoiced  decimal.Decimal `json:"invoiced"`
	Collected decimal.Decimal `json:"collected"`
}

// AgingBucket classifies overdue balances by days past due.
type AgingBucket struct {
	Label        string          `json:"label"` // "0-30", "31-60", "61-90", ">90"
	InvoiceCount int64           `json:"invoiceCount"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// ClientPaymentBehavior summarizes how a client pays.
type ClientPaymentBehavior struct {
	ClientID     string          `json:"clientID"`
	InvoiceCount int64           `json:"invoiceCount"`
	PaidCount    int64           `json:"paidCount"`
	AvgDaysToPay decimal.Decimal `json:"avgDaysToPay"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// ForecastPoint projects expected revenue for one future month from active
// recurring templates plus the historical collection average.
type ForecastPoint struct {
	Month             time.Time       `json:"month"`
	RecurringExpected decimal.Decimal `json:"recurringExpected"`
	HistoricalAverage decimal.Decimal `json:"historicalAverage"`
}

// MonthlyAmount is a raw month/amount pair from the reporting queries.
type MonthlyAmount struct {
	Month  time.Time
	Amount decimal.Decimal
}
