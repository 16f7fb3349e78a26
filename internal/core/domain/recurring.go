package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceFrequency is the cadence at which a template generates invoices.
type RecurrenceFrequency string

const (
	FrequencyWeekly    RecurrenceFrequency = "WEEKLY"
	FrequencyMonthly   RecurrenceFrequency = "MONTHLY"
	FrequencyQuarterly RecurrenceFrequency = "QUARTERLY"
	FrequencyYearly    RecurrenceFrequency = "YEARLY"
)

// IsValid reports whether f is one of the supported frequencies.
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringStatus indicates whether a template still generates invoices.
type RecurringStatus string

const (
	RecurringActive   RecurringStatus = "ACTIVE"
	RecurringCanceled RecurringStatus = "CANCELED"
)

// RecurringLineItem is one line of the template's line-item snapshot.
type RecurringLineItem struct {
	LineItemID         string          `json:"lineItemID"`
	RecurringInvoiceID string          `json:"recurringInvoiceID"`
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TaxRate            decimal.Decimal `json:"taxRate"`
}

// RecurringInvoice is a reusable invoice blueprint that generates concrete
// draft invoices on a schedule. NextDate always sits one frequency unit past
// the last generation date (or at the start date before any generation).
type RecurringInvoice struct {
	RecurringInvoiceID   string              `json:"recurringInvoiceID"`
	ClientID             string              `json:"clientID"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Frequency            RecurrenceFrequency `json:"frequency"`
	StartDate            time.Time           `json:"startDate"`
	EndDate              *time.Time          `json:"endDate,omitempty"`
	MaxOccurrences       *int                `json:"maxOccurrences,omitempty"`
	NextDate             time.Time           `json:"nextDate"`
	OccurrencesGenerated int                 `json:"occurrencesGenerated"`
	PaymentTermDays      int                 `json:"paymentTermDays"`
	Status               RecurringStatus     `json:"status"`
	LineItems            []RecurringLineItem `json:"lineItems,omitempty"`
	AuditFields
}

// Advance moves a generation date forward by one frequency unit. Monthly,
// quarterly and yearly advances preserve the anchor day-of-month (the
// template's start day) and clamp at month end, so a template anchored on the
// 31st generates on Jan 31, Feb 29, Mar 31, Apr 30, ...
func (f RecurrenceFrequency) Advance(from time.Time, anchorDay int) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(from, 1, anchorDay)
	case FrequencyQuarterly:
		return addMonthsClamped(from, 3, anchorDay)
	case FrequencyYearly:
		return addMonthsClamped(from, 12, anchorDay)
	default:
		return from
	}
}

// addMonthsClamped adds months to a date, landing on anchorDay or the last
// day of the target month, whichever is earlier. time.AddDate is unsuitable
// here: it normalizes Jan 31 + 1 month to Mar 2/3.
func addMonthsClamped(from time.Time, months, anchorDay int) time.Time {
	year, month := from.Year(), int(from.Month())+months
	for month > 12 {
		month -= 12
		year++
	}
	day := anchorDay
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Exhausted reports whether the template has reached its occurrence cap or
// would next generate past its end date.
func (r *RecurringInvoice) Exhausted() bool {
	if r.MaxOccurrences != nil && r.OccurrencesGenerated >= *r.MaxOccurrences {
		return true
	}
	if r.EndDate != nil && StartOfDay(r.NextDate).After(StartOfDay(*r.EndDate)) {
		return true
	}
	return false
}
