package inspections

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/models"
)

// Repository reads the inspection records FieldLog cross-references. Create
// exists for fixture loading only.
type Repository interface {
	// ListByScope matches job pack and structure; an empty mode matches any.
	ListByScope(ctx context.Context, jobPackID, structureID string, mode models.Mode) ([]*models.InspectionRecord, error)
	ListByDeployment(ctx context.Context, deploymentID string) ([]*models.InspectionRecord, error)
	Create(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error)
}
