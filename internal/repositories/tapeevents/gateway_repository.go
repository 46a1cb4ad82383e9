package tapeevents

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

func (r *GatewayRepository) Get(ctx context.Context, id string) (*models.TapeEvent, error) {
	rows, err := r.g.Query(ctx, store.TableTapeEvents, store.Filter{store.Eq("id", id)}, store.Order{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("tape event %s: %w", id, common.ErrorNotFound)
	}
	return fromRow(rows[0], r.now()), nil
}

func (r *GatewayRepository) ListByTapes(ctx context.Context, tapeIDs ...string) ([]*models.TapeEvent, error) {
	vs := make([]any, 0, len(tapeIDs))
	for _, id := range tapeIDs {
		vs = append(vs, id)
	}

	rows, err := r.g.Query(ctx, store.TableTapeEvents, store.Filter{store.In("tape_id", vs...)}, store.Asc("time", "id"))
	if err != nil {
		return nil, err
	}

	now := r.now()
	out := make([]*models.TapeEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row, now))
	}
	return out, nil
}

func (r *GatewayRepository) Create(ctx context.Context, e *models.TapeEvent) (*models.TapeEvent, error) {
	row, err := r.g.Insert(ctx, store.TableTapeEvents, store.Row{
		"tape_id":         e.TapeID,
		"type":            string(e.Type),
		"time":            e.Time,
		"timecode":        e.Timecode,
		"counter_seconds": e.CounterSeconds,
		"inspection_id":   e.InspectionID,
		"remark":          e.Remark,
	})
	if err != nil {
		return nil, err
	}
	created := *e
	created.ID = row.String("id")
	created.Pending = false
	return &created, nil
}

func (r *GatewayRepository) Update(ctx context.Context, e *models.TapeEvent) error {
	return r.g.Update(ctx, store.TableTapeEvents, e.ID, store.Row{
		"type":            string(e.Type),
		"time":            e.Time,
		"timecode":        e.Timecode,
		"counter_seconds": e.CounterSeconds,
		"remark":          e.Remark,
	})
}

func (r *GatewayRepository) Delete(ctx context.Context, id string) error {
	return r.g.Delete(ctx, store.TableTapeEvents, id)
}

func fromRow(row store.Row, now time.Time) *models.TapeEvent {
	timecode := row.String("timecode")
	if timecode == "" {
		timecode = "00:00:00"
	}
	return &models.TapeEvent{
		ID:             row.String("id"),
		TapeID:         row.String("tape_id"),
		Type:           models.TapeEventType(row.String("type")),
		Time:           row.Time("time", now),
		Timecode:       timecode,
		CounterSeconds: row.Int64("counter_seconds"),
		InspectionID:   row.String("inspection_id"),
		Remark:         row.String("remark"),
	}
}
