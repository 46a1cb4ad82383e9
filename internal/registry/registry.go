// Package registry manages the tapes of a deployment: the active tape, the
// newest-first tape list with read-only stubs for tapes only known from
// inspection records, and in-place edits.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/fallback"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/inspections"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/tapes"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// DefaultPrefix starts auto-generated tape numbers.
const DefaultPrefix = "TAPE"

// StubPrefix starts the display number of synthesized tapes.
const StubPrefix = "STUB-"

type Registry struct {
	tapes       tapes.Repository
	inspections inspections.Repository
	logger      logging.Logger
	now         func() time.Time
	prefix      string
}

type Option func(*Registry)

// WithClock overrides the clock used for tape numbers and creation times.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithPrefix sets the prefix of auto-generated tape numbers.
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

func New(t tapes.Repository, i inspections.Repository, logger logging.Logger, opts ...Option) *Registry {
	r := &Registry{
		tapes:       t,
		inspections: i,
		logger:      logger.With("module", "registry"),
		now:         time.Now,
		prefix:      DefaultPrefix,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// EnsureTape returns the newest tape of d, creating one when none exists.
// Placeholder deployments are never written, so they get no new tape.
func (r *Registry) EnsureTape(ctx context.Context, d *models.Deployment) (*models.Tape, error) {
	if d == nil || d.ID == "" {
		return nil, common.ErrNoDeployment
	}

	existing, err := r.tapes.ListByDeployment(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	if d.Placeholder {
		return nil, fmt.Errorf("deployment %s: %w", d.ID, common.ErrReadOnly)
	}

	now := r.now()
	created, err := r.tapes.Create(ctx, &models.Tape{
		DeploymentID: d.ID,
		Number:       fmt.Sprintf("%s-%s-%d", r.prefix, d.ID, now.UnixMilli()),
		Chapter:      1,
		Status:       models.TapeActive,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "tape created", "deployment", d.ID, "tape", created.ID, "number", created.Number)
	return created, nil
}

// ListTapes returns the tapes of d newest first. When the tapes table has
// none, tapes referenced by the deployment's inspection records that do not
// resolve are returned as read-only stubs. A store failure in either tier
// is returned; stubs never stand in for an unreadable tapes table.
func (r *Registry) ListTapes(ctx context.Context, d *models.Deployment) ([]*models.Tape, error) {
	if d == nil || d.ID == "" {
		return nil, common.ErrNoDeployment
	}

	chain := fallback.New(r.logger,
		fallback.Strategy[[]*models.Tape]{
			Name: "tapes",
			Run: func(ctx context.Context) ([]*models.Tape, bool, error) {
				list, err := r.tapes.ListByDeployment(ctx, d.ID)
				return list, len(list) > 0, err
			},
		},
		fallback.Strategy[[]*models.Tape]{
			Name: "inspection stubs",
			Run: func(ctx context.Context) ([]*models.Tape, bool, error) {
				stubs, err := r.stubs(ctx, d)
				return stubs, len(stubs) > 0, err
			},
		},
	)

	res, err := chain.Run(ctx)
	if err != nil {
		return nil, err
	}
	if res.Tier == 0 {
		return nil, nil
	}
	return res.Value, nil
}

func (r *Registry) stubs(ctx context.Context, d *models.Deployment) ([]*models.Tape, error) {
	records, err := r.inspections.ListByDeployment(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	seen := make(map[string]bool)
	var ids []string
	var refs []*models.Tape
	// Records come oldest first; walk backwards for newest-first stubs.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.TapeID == "" || seen[rec.TapeID] {
			continue
		}
		seen[rec.TapeID] = true
		ids = append(ids, rec.TapeID)
		created, _ := timex.CombineDateTime(rec.Date, rec.Time, now)
		refs = append(refs, Stub(d.ID, rec.TapeID, created))
	}
	if len(ids) == 0 {
		return nil, nil
	}

	resolved, err := r.tapes.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(resolved))
	for _, t := range resolved {
		known[t.ID] = true
	}

	out := make([]*models.Tape, 0, len(refs))
	for _, t := range refs {
		if !known[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// Stub builds a read-only tape for an id known only from references.
func Stub(deploymentID, tapeID string, createdAt time.Time) *models.Tape {
	short := tapeID
	if len(short) > 8 {
		short = short[:8]
	}
	return &models.Tape{
		ID:           tapeID,
		DeploymentID: deploymentID,
		Number:       StubPrefix + short,
		Chapter:      1,
		Status:       models.TapeActive,
		CreatedAt:    createdAt,
		Stub:         true,
	}
}

// TapePatch lists the editable tape fields; nil fields are left unchanged.
type TapePatch struct {
	Number  *string
	Chapter *int
	Remark  *string
	Status  *string
}

// Edit applies patch to t in place and persists it.
func (r *Registry) Edit(ctx context.Context, t *models.Tape, patch TapePatch) (*models.Tape, error) {
	if t == nil {
		return nil, common.ErrNoTape
	}
	if t.Stub {
		return nil, fmt.Errorf("tape %s: %w", t.ID, common.ErrReadOnly)
	}

	updated := *t
	if patch.Number != nil {
		if *patch.Number == "" {
			return nil, fmt.Errorf("%w: tape number must not be empty", common.ErrInvalidInput)
		}
		updated.Number = *patch.Number
	}
	if patch.Chapter != nil {
		if *patch.Chapter < 1 {
			return nil, fmt.Errorf("%w: chapter %d", common.ErrInvalidInput, *patch.Chapter)
		}
		updated.Chapter = *patch.Chapter
	}
	if patch.Remark != nil {
		updated.Remark = *patch.Remark
	}
	if patch.Status != nil {
		st, err := models.ParseTapeStatus(*patch.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidStatus, err)
		}
		updated.Status = st
	}

	if err := r.tapes.Update(ctx, &updated); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "tape edited", "tape", t.ID)
	return &updated, nil
}

// SetUpload records the footage object of a tape and its upload state.
func (r *Registry) SetUpload(ctx context.Context, tapeID, storageKey, status string) (*models.Tape, error) {
	t, err := r.tapes.Get(ctx, tapeID)
	if err != nil {
		return nil, err
	}
	t.StorageKey = storageKey
	t.UploadStatus = status
	if err := r.tapes.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get loads a stored tape.
func (r *Registry) Get(ctx context.Context, tapeID string) (*models.Tape, error) {
	return r.tapes.Get(ctx, tapeID)
}
