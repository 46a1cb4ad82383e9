package deployments

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/models"
)

type Repository interface {
	// Get loads one deployment from the table of the given mode.
	Get(ctx context.Context, mode models.Mode, id string) (*models.Deployment, error)
	// ListByScope returns deployments newest first. An empty structureID
	// matches any structure; limit <= 0 means no limit.
	ListByScope(ctx context.Context, mode models.Mode, jobPackID, structureID string, limit int) ([]*models.Deployment, error)
	Create(ctx context.Context, d *models.Deployment) (*models.Deployment, error)
	UpdateStatus(ctx context.Context, mode models.Mode, id string, status models.DeploymentStatus) error
}
