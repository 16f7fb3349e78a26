package mapping

import (
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:          d.InvoiceID,
		InvoiceNumber:      d.InvoiceNumber,
		ClientID:           d.ClientID,
		Title:              d.Title,
		Description:        d.Description,
		Status:             models.InvoiceStatus(d.Status),
		Subtotal:           d.Subtotal,
		TaxAmount:          d.TaxAmount,
		TotalAmount:        d.TotalAmount,
		AmountPaid:         d.AmountPaid,
		DueDate:            d.DueDate,
		PaidAt:             d.PaidAt,
		RecurringInvoiceID: d.RecurringInvoiceID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:          m.InvoiceID,
		InvoiceNumber:      m.InvoiceNumber,
		ClientID:           m.ClientID,
		Title:              m.Title,
		Description:        m.Description,
		Status:             domain.InvoiceStatus(m.Status),
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		TotalAmount:        m.TotalAmount,
		AmountPaid:         m.AmountPaid,
		DueDate:            m.DueDate,
		PaidAt:             m.PaidAt,
		RecurringInvoiceID: m.RecurringInvoiceID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to a model InvoiceLineItem
func ToModelLineItem(d domain.LineItem) models.InvoiceLineItem {
	return models.InvoiceLineItem{
		LineItemID:  d.LineItemID,
		InvoiceID:   d.InvoiceID,
		Description: d.Description,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		TaxRate:     d.TaxRate,
		Amount:      d.Amount,
		IsLateFee:   d.IsLateFee,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainLineItem converts a model InvoiceLineItem to a domain LineItem
func ToDomainLineItem(m models.InvoiceLineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:  m.LineItemID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxRate:     m.TaxRate,
		Amount:      m.Amount,
		IsLateFee:   m.IsLateFee,
		CreatedAt:   m.CreatedAt,
	}
}

// ToDomainLineItems converts a slice of model line items
func ToDomainLineItems(ms []models.InvoiceLineItem) []domain.LineItem {
	items := make([]domain.LineItem, len(ms))
	for i, m := range ms {
		items[i] = ToDomainLineItem(m)
	}
	return items
}
