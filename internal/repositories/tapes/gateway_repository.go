package tapes

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

func (r *GatewayRepository) Get(ctx context.Context, id string) (*models.Tape, error) {
	rows, err := r.g.Query(ctx, store.TableTapes, store.Filter{store.Eq("id", id)}, store.Order{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("tape %s: %w", id, common.ErrorNotFound)
	}
	return fromRow(rows[0], r.now()), nil
}

func (r *GatewayRepository) ListByDeployment(ctx context.Context, deploymentID string) ([]*models.Tape, error) {
	return r.list(ctx, store.Filter{store.Eq("deployment_id", deploymentID)})
}

func (r *GatewayRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Tape, error) {
	vs := make([]any, 0, len(ids))
	for _, id := range ids {
		vs = append(vs, id)
	}
	return r.list(ctx, store.Filter{store.In("id", vs...)})
}

func (r *GatewayRepository) list(ctx context.Context, filter store.Filter) ([]*models.Tape, error) {
	rows, err := r.g.Query(ctx, store.TableTapes, filter, store.Desc("created_at", "id"))
	if err != nil {
		return nil, err
	}

	now := r.now()
	out := make([]*models.Tape, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row, now))
	}
	return out, nil
}

func (r *GatewayRepository) Create(ctx context.Context, t *models.Tape) (*models.Tape, error) {
	created := *t
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.now()
	}
	if created.Status == "" {
		created.Status = models.TapeActive
	}
	if created.Chapter == 0 {
		created.Chapter = 1
	}

	row, err := r.g.Insert(ctx, store.TableTapes, store.Row{
		"id":            created.ID,
		"deployment_id": created.DeploymentID,
		"number":        created.Number,
		"chapter":       created.Chapter,
		"status":        string(created.Status),
		"remark":        created.Remark,
		"created_at":    created.CreatedAt,
		"storage_key":   created.StorageKey,
		"upload_status": created.UploadStatus,
	})
	if err != nil {
		return nil, err
	}
	created.ID = row.String("id")
	return &created, nil
}

func (r *GatewayRepository) Update(ctx context.Context, t *models.Tape) error {
	return r.g.Update(ctx, store.TableTapes, t.ID, store.Row{
		"number":        t.Number,
		"chapter":       t.Chapter,
		"status":        string(t.Status),
		"remark":        t.Remark,
		"storage_key":   t.StorageKey,
		"upload_status": t.UploadStatus,
	})
}

func fromRow(row store.Row, now time.Time) *models.Tape {
	chapter := int(row.Int64("chapter"))
	if chapter <= 0 {
		chapter = 1
	}
	status := models.TapeStatus(row.String("status"))
	if status == "" {
		status = models.TapeActive
	}
	return &models.Tape{
		ID:           row.String("id"),
		DeploymentID: row.String("deployment_id"),
		Number:       row.String("number"),
		Chapter:      chapter,
		Status:       status,
		Remark:       row.String("remark"),
		CreatedAt:    row.Time("created_at", now),
		StorageKey:   row.String("storage_key"),
		UploadStatus: row.String("upload_status"),
	}
}
