// Package deployments reads and writes dive and ROV deployments. Each mode
// lives in its own table; the repository picks the table from the mode.
package deployments

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
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

// TableFor maps a mode to its deployment table.
func TableFor(mode models.Mode) (string, error) {
	switch mode {
	case models.ModeDiving:
		return store.TableDiveDeployments, nil
	case models.ModeROV:
		return store.TableROVDeployments, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidMode, mode)
}

func (r *GatewayRepository) Get(ctx context.Context, mode models.Mode, id string) (*models.Deployment, error) {
	table, err := TableFor(mode)
	if err != nil {
		return nil, err
	}

	rows, err := r.g.Query(ctx, table, store.Filter{store.Eq("id", id)}, store.Order{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("deployment %s: %w", id, common.ErrorNotFound)
	}
	return fromRow(rows[0], mode, r.now()), nil
}

func (r *GatewayRepository) ListByScope(ctx context.Context, mode models.Mode, jobPackID, structureID string, limit int) ([]*models.Deployment, error) {
	table, err := TableFor(mode)
	if err != nil {
		return nil, err
	}

	filter := store.Filter{store.Eq("job_pack_id", jobPackID)}
	if structureID != "" {
		filter = append(filter, store.Eq("structure_id", structureID))
	}

	rows, err := r.g.Query(ctx, table, filter, store.Desc("created_at", "id").WithLimit(limit))
	if err != nil {
		return nil, err
	}

	now := r.now()
	out := make([]*models.Deployment, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row, mode, now))
	}
	return out, nil
}

func (r *GatewayRepository) Create(ctx context.Context, d *models.Deployment) (*models.Deployment, error) {
	table, err := TableFor(d.Mode)
	if err != nil {
		return nil, err
	}

	created := *d
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.now()
	}
	if created.Status == "" {
		created.Status = models.DeploymentInProgress
	}

	row, err := r.g.Insert(ctx, table, store.Row{
		"id":           created.ID,
		"sub_type":     created.SubType,
		"name":         created.Name,
		"number":       created.Number,
		"status":       string(created.Status),
		"job_pack_id":  created.JobPackID,
		"structure_id": created.StructureID,
		"created_at":   created.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	created.ID = row.String("id")
	created.Raw = row
	return &created, nil
}

func (r *GatewayRepository) UpdateStatus(ctx context.Context, mode models.Mode, id string, status models.DeploymentStatus) error {
	table, err := TableFor(mode)
	if err != nil {
		return err
	}
	return r.g.Update(ctx, table, id, store.Row{"status": string(status)})
}

func fromRow(row store.Row, mode models.Mode, now time.Time) *models.Deployment {
	status := models.DeploymentStatus(row.String("status"))
	if status == "" {
		status = models.DeploymentInProgress
	}
	return &models.Deployment{
		ID:          row.String("id"),
		Mode:        mode,
		SubType:     row.String("sub_type"),
		Name:        row.String("name"),
		Number:      row.String("number"),
		Status:      status,
		JobPackID:   row.String("job_pack_id"),
		StructureID: row.String("structure_id"),
		CreatedAt:   row.Time("created_at", now),
		Raw:         row,
	}
}
