package repositories

import (
	"context"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// ClientRepositoryFacade is a read-only lookup into the client directory.
// Client CRUD lives outside this core; invoices store references only.
type ClientRepositoryFacade interface {
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)
}
