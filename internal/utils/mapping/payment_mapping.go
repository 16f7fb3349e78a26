package mapping

import (
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/models"
)

// ToModelPayment converts a domain Payment to a model InvoicePayment
func ToModelPayment(d domain.Payment) models.InvoicePayment {
	return models.InvoicePayment{
		PaymentID:   d.PaymentID,
		InvoiceID:   d.InvoiceID,
		Amount:      d.Amount,
		MethodID:    d.MethodID,
		PaymentDate: d.PaymentDate,
		Reference:   d.Reference,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainPayment converts a model InvoicePayment to a domain Payment
func ToDomainPayment(m models.InvoicePayment) domain.Payment {
	return domain.Payment{
		PaymentID:   m.PaymentID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		MethodID:    m.MethodID,
		PaymentDate: m.PaymentDate,
		Reference:   m.Reference,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

// ToDomainPaymentMethod converts a model PaymentMethod to its domain form
func ToDomainPaymentMethod(m models.PaymentMethod) domain.PaymentMethod {
	return domain.PaymentMethod{
		MethodID: m.MethodID,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}
