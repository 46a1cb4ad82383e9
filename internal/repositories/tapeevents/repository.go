package tapeevents

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.TapeEvent, error)
	// ListByTapes returns the events of the given tapes by time ascending,
	// ties by id.
	ListByTapes(ctx context.Context, tapeIDs ...string) ([]*models.TapeEvent, error)
	Create(ctx context.Context, e *models.TapeEvent) (*models.TapeEvent, error)
	// Update rewrites type, time, timecode, counter and remark of e.
	Update(ctx context.Context, e *models.TapeEvent) error
	Delete(ctx context.Context, id string) error
}
