package dto

import (
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one billable line in a create/update request.
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// CreateInvoiceRequest defines the payload for creating a draft invoice.
type CreateInvoiceRequest struct {
	ClientID    string            `json:"clientID" binding:"required"`
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	DueDate     time.Time         `json:"dueDate" binding:"required"`
	LineItems   []LineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest defines the payload for updating a draft or sent invoice.
// Nil fields are left unchanged; a non-nil LineItems replaces the set.
type UpdateInvoiceRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	DueDate     *time.Time         `json:"dueDate,omitempty"`
	LineItems   *[]LineItemRequest `json:"lineItems,omitempty" binding:"omitempty,min=1,dive"`
}

// ListInvoicesParams holds filters and pagination for invoice listings.
type ListInvoicesParams struct {
	Status    *string    `form:"status"`
	ClientID  *string    `form:"clientID"`
	FromDate  *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"toDate" time_format:"2006-01-02"`
	Limit     int        `form:"limit"`
	NextToken *string    `form:"nextToken"`
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	LineItemID  string          `json:"lineItemID"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Amount      decimal.Decimal `json:"amount"`
	IsLateFee   bool            `json:"isLateFee"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID     string             `json:"invoiceID"`
	InvoiceNumber string             `json:"invoiceNumber"`
	ClientID      string             `json:"clientID"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TaxAmount     decimal.Decimal    `json:"taxAmount"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	AmountPaid    decimal.Decimal    `json:"amountPaid"`
	DueDate       time.Time          `json:"dueDate"`
	PaidAt        *time.Time         `json:"paidAt,omitempty"`
	LineItems     []LineItemResponse `json:"lineItems,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// ListInvoicesResponse is a page of invoices plus the next-page token.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToLineItemResponse converts a domain.LineItem to its DTO.
func ToLineItemResponse(item *domain.LineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID:  item.LineItemID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TaxRate:     item.TaxRate,
		Amount:      item.Amount,
		IsLateFee:   item.IsLateFee,
	}
}

// ToInvoiceResponse converts a domain.Invoice to its DTO.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.LineItems))
	for i := range inv.LineItems {
		items[i] = ToLineItemResponse(&inv.LineItems[i])
	}
	return InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		Title:         inv.Title,
		Description:   inv.Description,
		Status:        string(inv.Status),
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		LineItems:     items,
		CreatedAt:     inv.CreatedAt,
	}
}

// ToInvoiceResponses converts a slice of domain invoices.
func ToInvoiceResponses(invoices []domain.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}
