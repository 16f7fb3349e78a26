package dto

import (
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest defines the payload for recording a payment against an invoice.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	MethodID    string          `json:"methodID" binding:"required"`
	PaymentDate time.Time       `json:"paymentDate" binding:"required"`
	Reference   *string         `json:"reference,omitempty"`
	Notes       string          `json:"notes"`
}

// MarkAsPaidRequest names the method used to settle the outstanding balance.
type MarkAsPaidRequest struct {
	MethodID string `json:"methodID" binding:"required"`
}

// ListPaymentsParams holds filters and pagination for payment listings.
type ListPaymentsParams struct {
	InvoiceID *string          `form:"invoiceID"`
	ClientID  *string          `form:"clientID"`
	MethodID  *string          `form:"methodID"`
	FromDate  *time.Time       `form:"fromDate" time_format:"2006-01-02"`
	ToDate    *time.Time       `form:"toDate" time_format:"2006-01-02"`
	MinAmount *decimal.Decimal `form:"minAmount"`
	MaxAmount *decimal.Decimal `form:"maxAmount"`
	Limit     int              `form:"limit"`
	NextToken *string          `form:"nextToken"`
}

// PaymentStatisticsParams holds filters for the statistics rollup.
type PaymentStatisticsParams struct {
	ClientID *string    `form:"clientID"`
	MethodID *string    `form:"methodID"`
	FromDate *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"toDate" time_format:"2006-01-02"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID   string          `json:"paymentID"`
	InvoiceID   string          `json:"invoiceID"`
	Amount      decimal.Decimal `json:"amount"`
	MethodID    string          `json:"methodID"`
	PaymentDate time.Time       `json:"paymentDate"`
	Reference   *string         `json:"reference,omitempty"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// RecordPaymentResponse returns the created payment plus the invoice's new state.
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// ListPaymentsResponse is a page of payments plus the next-page token.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPaymentResponse converts a domain.Payment to its DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:   p.PaymentID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		MethodID:    p.MethodID,
		PaymentDate: p.PaymentDate,
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
