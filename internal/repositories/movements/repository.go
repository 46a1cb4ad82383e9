package movements

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/models"
)

type Repository interface {
	// ListByDeployment returns events by time ascending, ties by id.
	ListByDeployment(ctx context.Context, deploymentID string) ([]*models.MovementEvent, error)
	Create(ctx context.Context, e *models.MovementEvent) (*models.MovementEvent, error)
	Delete(ctx context.Context, id string) error
}
