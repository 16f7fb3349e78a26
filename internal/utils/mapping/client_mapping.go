package mapping

import (
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/models"
)

// ToDomainClient converts a model Client to a domain Client
func ToDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID:        m.ClientID,
		Name:            m.Name,
		Email:           m.Email,
		Address:         m.Address,
		PaymentTermDays: m.PaymentTermDays,
	}
}
