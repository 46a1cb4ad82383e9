package tapes

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Tape, error)
	// ListByDeployment returns tapes newest first.
	ListByDeployment(ctx context.Context, deploymentID string) ([]*models.Tape, error)
	// ListByIDs returns the tapes among ids that exist.
	ListByIDs(ctx context.Context, ids []string) ([]*models.Tape, error)
	Create(ctx context.Context, t *models.Tape) (*models.Tape, error)
	// Update rewrites the mutable columns of t.
	Update(ctx context.Context, t *models.Tape) error
}
