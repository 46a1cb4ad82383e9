package movements

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/store"
)

type GatewayRepository struct {
	g   store.Gateway
	now func() time.Time
}

func NewGatewayRepository(g store.Gateway) *GatewayRepository {
	return &GatewayRepository{g: g, now: time.Now}
}

func (r *GatewayRepository) ListByDeployment(ctx context.Context, deploymentID string) ([]*models.MovementEvent, error) {
	rows, err := r.g.Query(ctx, store.TableMovementEvents,
		store.Filter{store.Eq("deployment_id", deploymentID)},
		store.Asc("time", "id"))
	if err != nil {
		return nil, err
	}

	now := r.now()
	out := make([]*models.MovementEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, &models.MovementEvent{
			ID:           row.String("id"),
			DeploymentID: row.String("deployment_id"),
			Time:         row.Time("time", now),
			Code:         row.String("code"),
			Remark:       row.String("remark"),
		})
	}
	return out, nil
}

func (r *GatewayRepository) Create(ctx context.Context, e *models.MovementEvent) (*models.MovementEvent, error) {
	row, err := r.g.Insert(ctx, store.TableMovementEvents, store.Row{
		"id":            e.ID,
		"deployment_id": e.DeploymentID,
		"time":          e.Time,
		"code":          e.Code,
		"remark":        e.Remark,
	})
	if err != nil {
		return nil, err
	}
	created := *e
	created.ID = row.String("id")
	return &created, nil
}

func (r *GatewayRepository) Delete(ctx context.Context, id string) error {
	return r.g.Delete(ctx, store.TableMovementEvents, id)
}
