package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
)

// clientDirectoryService resolves client references against the directory
// table. Client CRUD happens elsewhere; this core only reads.
type clientDirectoryService struct {
	BaseService
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientDirectoryService creates a new ClientDirectoryService.
func NewClientDirectoryService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientDirectorySvc {
	return &clientDirectoryService{clientRepo: clientRepo}
}

var _ portssvc.ClientDirectorySvc = (*clientDirectoryService)(nil)

// GetClientByID retrieves a client by ID.
func (s *clientDirectoryService) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client ID is required", apperrors.ErrValidation)
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find client", slog.String("client_id", clientID))
		}
		return nil, err
	}
	return client, nil
}
