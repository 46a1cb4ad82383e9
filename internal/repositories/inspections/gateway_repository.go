package inspections

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/store"
)

type GatewayRepository struct {
	g store.Gateway
}

func NewGatewayRepository(g store.Gateway) *GatewayRepository {
	return &GatewayRepository{g: g}
}

func (r *GatewayRepository) ListByScope(ctx context.Context, jobPackID, structureID string, mode models.Mode) ([]*models.InspectionRecord, error) {
	filter := store.Filter{
		store.Eq("job_pack_id", jobPackID),
		store.Eq("structure_id", structureID),
	}
	if mode != "" {
		filter = append(filter, store.Eq("mode", string(mode)))
	}
	return r.list(ctx, filter)
}

func (r *GatewayRepository) ListByDeployment(ctx context.Context, deploymentID string) ([]*models.InspectionRecord, error) {
	return r.list(ctx, store.Filter{store.Eq("deployment_id", deploymentID)})
}

func (r *GatewayRepository) list(ctx context.Context, filter store.Filter) ([]*models.InspectionRecord, error) {
	rows, err := r.g.Query(ctx, store.TableInspections, filter, store.Asc("date", "time", "id"))
	if err != nil {
		return nil, err
	}

	out := make([]*models.InspectionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, &models.InspectionRecord{
			ID:           row.String("id"),
			JobPackID:    row.String("job_pack_id"),
			StructureID:  row.String("structure_id"),
			Mode:         models.Mode(row.String("mode")),
			DeploymentID: row.String("deployment_id"),
			TapeID:       row.String("tape_id"),
			Date:         row.String("date"),
			Time:         row.String("time"),
			Anomaly:      row.Bool("anomaly"),
			Description:  row.String("description"),
		})
	}
	return out, nil
}

func (r *GatewayRepository) Create(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error) {
	row, err := r.g.Insert(ctx, store.TableInspections, store.Row{
		"id":            rec.ID,
		"job_pack_id":   rec.JobPackID,
		"structure_id":  rec.StructureID,
		"mode":          string(rec.Mode),
		"deployment_id": rec.DeploymentID,
		"tape_id":       rec.TapeID,
		"date":          rec.Date,
		"time":          rec.Time,
		"anomaly":       rec.Anomaly,
		"description":   rec.Description,
	})
	if err != nil {
		return nil, err
	}
	created := *rec
	created.ID = row.String("id")
	return &created, nil
}
