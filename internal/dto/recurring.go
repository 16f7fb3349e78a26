package dto

import (
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// CreateRecurringInvoiceRequest defines the payload for creating a recurring template.
type CreateRecurringInvoiceRequest struct {
	ClientID        string            `json:"clientID" binding:"required"`
	Title           string            `json:"title" binding:"required"`
	Description     string            `json:"description"`
	Frequency       string            `json:"frequency" binding:"required"`
	StartDate       time.Time         `json:"startDate" binding:"required"`
	EndDate         *time.Time        `json:"endDate,omitempty"`
	MaxOccurrences  *int              `json:"maxOccurrences,omitempty"`
	PaymentTermDays *int              `json:"paymentTermDays,omitempty"` // defaults to the configured policy
	LineItems       []LineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// ListRecurringInvoicesParams holds filters and pagination for template listings.
type ListRecurringInvoicesParams struct {
	Status    *string `form:"status"`
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// RecurringInvoiceResponse defines the data returned for a recurring template.
type RecurringInvoiceResponse struct {
	RecurringInvoiceID   string             `json:"recurringInvoiceID"`
	ClientID             string             `json:"clientID"`
	Title                string             `json:"title"`
	Description          string             `json:"description"`
	Frequency            string             `json:"frequency"`
	StartDate            time.Time          `json:"startDate"`
	EndDate              *time.Time         `json:"endDate,omitempty"`
	MaxOccurrences       *int               `json:"maxOccurrences,omitempty"`
	NextDate             time.Time          `json:"nextDate"`
	OccurrencesGenerated int                `json:"occurrencesGenerated"`
	PaymentTermDays      int                `json:"paymentTermDays"`
	Status               string             `json:"status"`
	LineItems            []LineItemResponse `json:"lineItems,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// ListRecurringInvoicesResponse is a page of templates plus the next-page token.
type ListRecurringInvoicesResponse struct {
	RecurringInvoices []RecurringInvoiceResponse `json:"recurringInvoices"`
	NextToken         *string                    `json:"nextToken,omitempty"`
}

// ToRecurringInvoiceResponse converts a domain.RecurringInvoice to its DTO.
func ToRecurringInvoiceResponse(r *domain.RecurringInvoice) RecurringInvoiceResponse {
	items := make([]LineItemResponse, len(r.LineItems))
	for i, item := range r.LineItems {
		items[i] = LineItemResponse{
			LineItemID:  item.LineItemID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Amount:      domain.LineAmount(item.Quantity, item.UnitPrice, item.TaxRate),
		}
	}
	return RecurringInvoiceResponse{
		RecurringInvoiceID:   r.RecurringInvoiceID,
		ClientID:             r.ClientID,
		Title:                r.Title,
		Description:          r.Description,
		Frequency:            string(r.Frequency),
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		MaxOccurrences:       r.MaxOccurrences,
		NextDate:             r.NextDate,
		OccurrencesGenerated: r.OccurrencesGenerated,
		PaymentTermDays:      r.PaymentTermDays,
		Status:               string(r.Status),
		LineItems:            items,
		CreatedAt:            r.CreatedAt,
	}
}

// ToRecurringInvoiceResponses converts a slice of domain templates.
func ToRecurringInvoiceResponses(templates []domain.RecurringInvoice) []RecurringInvoiceResponse {
	responses := make([]RecurringInvoiceResponse, len(templates))
	for i := range templates {
		responses[i] = ToRecurringInvoiceResponse(&templates[i])
	}
	return responses
}

// ApplyLateFeeRequest defines the payload for applying a late fee.
// FeeType is FIXED (Value is the fee amount) or PERCENTAGE (Value percent of
// the invoice's current total).
type ApplyLateFeeRequest struct {
	FeeType string `json:"feeType" binding:"required,oneof=FIXED PERCENTAGE"`
	Value   string `json:"value" binding:"required"`
}
