package mapping

import (
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/models"
)

// ToModelRecurringInvoice converts a domain RecurringInvoice to its model form
func ToModelRecurringInvoice(d domain.RecurringInvoice) models.RecurringInvoice {
	return models.RecurringInvoice{
		RecurringInvoiceID:   d.RecurringInvoiceID,
		ClientID:             d.ClientID,
		Title:                d.Title,
		Description:          d.Description,
		Frequency:            string(d.Frequency),
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		MaxOccurrences:       d.MaxOccurrences,
		NextDate:             d.NextDate,
		OccurrencesGenerated: d.OccurrencesGenerated,
		PaymentTermDays:      d.PaymentTermDays,
		Status:               models.RecurringStatus(d.Status),
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRecurringInvoice converts a model RecurringInvoice to its domain form
func ToDomainRecurringInvoice(m models.RecurringInvoice) domain.RecurringInvoice {
	return domain.RecurringInvoice{
		RecurringInvoiceID:   m.RecurringInvoiceID,
		ClientID:             m.ClientID,
		Title:                m.Title,
		Description:          m.Description,
		Frequency:            domain.RecurrenceFrequency(m.Frequency),
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		MaxOccurrences:       m.MaxOccurrences,
		NextDate:             m.NextDate,
		OccurrencesGenerated: m.OccurrencesGenerated,
		PaymentTermDays:      m.PaymentTermDays,
		Status:               domain.RecurringStatus(m.Status),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelRecurringLineItem converts a domain snapshot line to its model form
func ToModelRecurringLineItem(d domain.RecurringLineItem) models.RecurringInvoiceLineItem {
	return models.RecurringInvoiceLineItem{
		LineItemID:         d.LineItemID,
		RecurringInvoiceID: d.RecurringInvoiceID,
		Description:        d.Description,
		Quantity:           d.Quantity,
		UnitPrice:          d.UnitPrice,
		TaxRate:            d.TaxRate,
	}
}

// ToDomainRecurringLineItem converts a model snapshot line to its domain form
func ToDomainRecurringLineItem(m models.RecurringInvoiceLineItem) domain.RecurringLineItem {
	return domain.RecurringLineItem{
		LineItemID:         m.LineItemID,
		RecurringInvoiceID: m.RecurringInvoiceID,
		Description:        m.Description,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		TaxRate:            m.TaxRate,
	}
}

// ToDomainRecurringLineItems converts a slice of model snapshot lines
func ToDomainRecurringLineItems(ms []models.RecurringInvoiceLineItem) []domain.RecurringLineItem {
	items := make([]domain.RecurringLineItem, len(ms))
	for i, m := range ms {
		items[i] = ToDomainRecurringLineItem(m)
	}
	return items
}
