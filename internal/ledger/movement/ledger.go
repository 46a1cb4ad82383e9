// Package movement is the movement ledger: an append-only sequence of
// deployment movements from which the current phase and the time in field
// are derived by replay.
package movement

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/deployments"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/movements"
)

type Ledger struct {
	events      movements.Repository
	deployments deployments.Repository
	logger      logging.Logger
	now         func() time.Time
	rovLabels   []string
}

type Option func(*Ledger)

// WithClock overrides the wall clock used for new events.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithROVLabels sets the codes used for ROV deployments.
func WithROVLabels(labels ...string) Option {
	return func(l *Ledger) { l.rovLabels = labels }
}

func NewLedger(events movements.Repository, deps deployments.Repository, logger logging.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		events:      events,
		deployments: deps,
		logger:      logger.With("module", "movement"),
		now:         time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Vocabulary returns the vocabulary used for d.
func (l *Ledger) Vocabulary(d *models.Deployment) Vocabulary {
	return VocabularyFor(d, l.rovLabels...)
}

// Load reads the events of a deployment ordered by time.
func (l *Ledger) Load(ctx context.Context, deploymentID string) ([]*models.MovementEvent, error) {
	return l.events.ListByDeployment(ctx, deploymentID)
}

// Advance appends the code after the current phase. It returns (nil, nil)
// once the terminal code has been reached.
func (l *Ledger) Advance(ctx context.Context, d *models.Deployment) (*models.MovementEvent, error) {
	events, err := l.Load(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	code, ok, err := NextCode(l.Vocabulary(d), events)
	if err != nil {
		return nil, err
	}
	if !ok {
		l.logger.Debug(ctx, "advance ignored at terminal phase", "deployment", d.ID)
		return nil, nil
	}
	return l.Log(ctx, d, code, "")
}

// Rollback deletes the most recent event and returns it. It is a no-op
// while the deployment is awaiting its first movement.
func (l *Ledger) Rollback(ctx context.Context, d *models.Deployment) (*models.MovementEvent, error) {
	if err := writable(d); err != nil {
		return nil, err
	}
	events, err := l.Load(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	last := Latest(events)
	if last == nil {
		return nil, nil
	}
	if err := l.events.Delete(ctx, last.ID); err != nil {
		return nil, err
	}
	l.logger.Info(ctx, "movement rolled back", "deployment", d.ID, "code", last.Code)
	return last, nil
}

// Log appends code at the current time. Logging the terminal code also
// marks the deployment COMPLETED; that second write is independent, and on
// its failure the stored event is returned with an error wrapping
// common.ErrPartialWrite.
func (l *Ledger) Log(ctx context.Context, d *models.Deployment, code, remark string) (*models.MovementEvent, error) {
	if err := writable(d); err != nil {
		return nil, err
	}

	vocab := l.Vocabulary(d)
	if !vocab.Contains(code) {
		return nil, fmt.Errorf("%w: %q not in %s vocabulary", common.ErrUnknownCode, code, vocab.Name)
	}

	created, err := l.events.Create(ctx, &models.MovementEvent{
		DeploymentID: d.ID,
		Time:         l.now(),
		Code:         code,
		Remark:       remark,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info(ctx, "movement logged", "deployment", d.ID, "code", code)

	if code == vocab.Terminal() {
		if err := l.deployments.UpdateStatus(ctx, d.Mode, d.ID, models.DeploymentCompleted); err != nil {
			l.logger.Warn(ctx, "deployment status not updated", "deployment", d.ID, "error", err)
			return created, fmt.Errorf("%w: mark %s completed: %w", common.ErrPartialWrite, d.ID, err)
		}
		d.Status = models.DeploymentCompleted
	}
	return created, nil
}

// Delete removes one movement event of d by id.
func (l *Ledger) Delete(ctx context.Context, d *models.Deployment, eventID string) error {
	if err := writable(d); err != nil {
		return err
	}
	if err := l.events.Delete(ctx, eventID); err != nil {
		return err
	}
	l.logger.Info(ctx, "movement deleted", "deployment", d.ID, "id", eventID)
	return nil
}

// writable rejects missing and placeholder deployments.
func writable(d *models.Deployment) error {
	if d == nil || d.ID == "" {
		return common.ErrNoDeployment
	}
	if d.Placeholder {
		return fmt.Errorf("deployment %s: %w", d.ID, common.ErrReadOnly)
	}
	return nil
}
