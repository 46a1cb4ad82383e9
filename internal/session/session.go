// Package session is the operator-facing surface of the field log. A
// Session holds the explicit working context (scope, active deployment) and
// serializes operations; every operation ends with a replay that produces a
// fresh Snapshot. Store failures never abort a snapshot: they are logged,
// reported as notices and flag the affected view.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/movement"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/reconcile"
	"github.com/dmitrijs2005/fieldlog/internal/registry"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/repomanager"
)

// Context is the working context passed explicitly into every query.
type Context struct {
	Scope        discovery.Scope `json:"scope"`
	DeploymentID string          `json:"deployment_id,omitempty"`
}

type Session struct {
	mu sync.Mutex

	cur  Context
	repo repomanager.Repositories

	discovery *discovery.Discovery
	movements *movement.Ledger
	registry  *registry.Registry
	ledger    *tape.Ledger

	logger logging.Logger
	now    func() time.Time
	snap   *Snapshot
}

type options struct {
	now        func() time.Time
	tapePrefix string
	rovLabels  []string
}

type Option func(*options)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTapePrefix sets the prefix of auto-generated tape numbers.
func WithTapePrefix(prefix string) Option {
	return func(o *options) { o.tapePrefix = prefix }
}

// WithROVLabels sets the movement codes of ROV deployments.
func WithROVLabels(labels ...string) Option {
	return func(o *options) { o.rovLabels = labels }
}

// New builds a session over repos. No store access happens until the first
// operation.
func New(repos repomanager.Repositories, start Context, logger logging.Logger, opts ...Option) *Session {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	logger = logger.With("module", "session")

	return &Session{
		cur:       start,
		repo:      repos,
		discovery: discovery.New(repos.Deployments, repos.Inspections, logger),
		movements: movement.NewLedger(repos.Movements, repos.Deployments, logger,
			movement.WithClock(o.now), movement.WithROVLabels(o.rovLabels...)),
		registry: registry.New(repos.Tapes, repos.Inspections, logger,
			registry.WithClock(o.now), registry.WithPrefix(o.tapePrefix)),
		logger: logger,
		now:    o.now,
	}
}

// Context returns the current working context.
func (s *Session) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Snapshot returns the last snapshot, or nil before the first operation.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// op collects the view statuses and notices of one operation.
type op struct {
	s       *Session
	status  map[View]ViewStatus
	notices []Notice
}

func (s *Session) begin() *op {
	st := make(map[View]ViewStatus, len(Views))
	for _, v := range Views {
		st[v] = StatusOK
	}
	return &op{s: s, status: st}
}

func (o *op) fail(ctx context.Context, view View, status ViewStatus, action string, err error) {
	// A save error outranks a later read failure of the same view.
	if o.status[view] != StatusSaveError {
		o.status[view] = status
	}
	o.notices = append(o.notices, Notice{
		Time:    o.s.now(),
		View:    view,
		Message: fmt.Sprintf("%s: %v", action, err),
	})
	o.s.logger.Warn(ctx, "view degraded", "view", view, "status", status, "action", action, "error", err)
}

// absorb turns a store failure of a write into a save_error on view. Any
// other error is returned to the caller.
func (o *op) absorb(ctx context.Context, view View, action string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrStore) || errors.Is(err, common.ErrPartialWrite) {
		o.fail(ctx, view, StatusSaveError, action, err)
		return nil
	}
	return err
}

// Sync rediscovers deployments and replays every view from the store.
// Unconfirmed tape entries are dropped.
func (s *Session) Sync(ctx context.Context) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx, s.begin(), true, true)
}

// AdvanceMovement appends the next movement of the active deployment.
func (s *Session) AdvanceMovement(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	d, err := s.writableDeployment(ctx, o)
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}
	_, err = s.movements.Advance(ctx, d)
	err = o.absorb(ctx, ViewMovement, "advance movement", err)
	return s.refresh(ctx, o, false, false), err
}

// RollbackMovement deletes the latest movement of the active deployment.
func (s *Session) RollbackMovement(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	d, err := s.writableDeployment(ctx, o)
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}
	_, err = s.movements.Rollback(ctx, d)
	err = o.absorb(ctx, ViewMovement, "roll back movement", err)
	return s.refresh(ctx, o, false, false), err
}

// LogMovement appends an explicit movement code, e.g. a repeat worksite
// arrival.
func (s *Session) LogMovement(ctx context.Context, code, remark string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	d, err := s.writableDeployment(ctx, o)
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}
	_, err = s.movements.Log(ctx, d, code, remark)
	err = o.absorb(ctx, ViewMovement, "log movement", err)
	return s.refresh(ctx, o, false, false), err
}

// TapeEventRequest is one recording-control action from the operator.
type TapeEventRequest struct {
	Verb         string
	InspectionID string
	Remark       string
}

// LogTapeEvent records a verb on the active tape, creating the tape when
// the deployment has none. A failed write stays in the snapshot as a
// pending entry until the next Sync.
func (s *Session) LogTapeEvent(ctx context.Context, req TapeEventRequest) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	t, err := tape.ParseVerb(req.Verb)
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}
	d, err := s.writableDeployment(ctx, o)
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}

	if s.ledger == nil || s.ledger.Tape().Stub || s.ledger.Tape().DeploymentID != d.ID {
		tp, err := s.registry.EnsureTape(ctx, d)
		if err != nil {
			err = o.absorb(ctx, ViewTape, "create tape", err)
			return s.refresh(ctx, o, false, false), err
		}
		l := tape.NewLedger(s.repo.TapeEvents, tp, s.logger)
		if err := l.Load(ctx); err != nil {
			// Without the stored timeline the counter cannot be derived.
			err = o.absorb(ctx, ViewTape, "load tape events", err)
			return s.refresh(ctx, o, false, false), err
		}
		s.ledger = l
	}

	_, err = s.ledger.Log(ctx, t, s.now(), req.InspectionID, req.Remark)
	err = o.absorb(ctx, ViewTape, "log tape event", err)
	return s.refresh(ctx, o, false, false), err
}

// TapeEventEdit is an operator correction; empty fields are unchanged.
type TapeEventEdit struct {
	Timecode string
	Verb     string
	Time     *time.Time
}

// EditTapeEvent corrects the time, timecode or type of a tape event and
// recomputes its counter from the preceding start.
func (s *Session) EditTapeEvent(ctx context.Context, id string, edit TapeEventEdit) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	if _, err := s.writableDeployment(ctx, o); err != nil {
		return s.refresh(ctx, o, false, false), err
	}
	if tape.IsTempID(id) {
		return s.refresh(ctx, o, false, false), fmt.Errorf("tape event %s: %w", id, common.ErrReadOnly)
	}

	event, siblings, err := s.tapeEventWithSiblings(ctx, id)
	if err != nil {
		err = o.absorb(ctx, ViewTape, "load tape event", err)
		return s.refresh(ctx, o, false, false), err
	}

	patched, err := reconcile.EditEventTime(siblings, event, reconcile.Edit{
		Time:     edit.Time,
		Timecode: edit.Timecode,
		Verb:     edit.Verb,
	})
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}

	if s.ledger != nil && s.ledger.Tape().ID == patched.TapeID {
		err = s.ledger.Update(ctx, patched)
	} else {
		err = s.repo.TapeEvents.Update(ctx, patched)
	}
	err = o.absorb(ctx, ViewTape, "edit tape event", err)
	return s.refresh(ctx, o, false, true), err
}

func (s *Session) tapeEventWithSiblings(ctx context.Context, id string) (*models.TapeEvent, []*models.TapeEvent, error) {
	if s.ledger != nil {
		if e, ok := s.ledger.Find(id); ok {
			return e, s.ledger.Events(), nil
		}
	}
	e, err := s.repo.TapeEvents.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	siblings, err := s.repo.TapeEvents.ListByTapes(ctx, e.TapeID)
	if err != nil {
		return nil, nil, err
	}
	return e, siblings, nil
}

// DeleteEvent removes exactly one movement or tape event of the active
// deployment.
func (s *Session) DeleteEvent(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	d, err := s.writableDeployment(ctx, o)
	if err != nil {
		return s.refresh(ctx, o, false, false), err
	}

	if s.ledger != nil {
		if _, ok := s.ledger.Find(id); ok {
			_, err := s.ledger.Rollback(ctx, id, s.now())
			err = o.absorb(ctx, ViewTape, "delete tape event", err)
			return s.refresh(ctx, o, false, false), err
		}
	}

	if s.snap != nil && slices.ContainsFunc(s.snap.Movements, func(m *models.MovementEvent) bool { return m.ID == id }) {
		err := s.movements.Delete(ctx, d, id)
		err = o.absorb(ctx, ViewMovement, "delete movement", err)
		return s.refresh(ctx, o, false, false), err
	}

	if s.snap != nil && slices.ContainsFunc(s.snap.Timeline, func(e models.TimelineEntry) bool {
		return e.Kind == models.TimelineTape && e.SourceID == id
	}) {
		err := s.repo.TapeEvents.Delete(ctx, id)
		err = o.absorb(ctx, ViewTape, "delete tape event", err)
		return s.refresh(ctx, o, false, false), err
	}

	return s.refresh(ctx, o, false, false), fmt.Errorf("event %s: %w", id, common.ErrorNotFound)
}

// SelectDeployment makes id the active deployment. It must be one of the
// discovered deployments.
func (s *Session) SelectDeployment(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	if s.snap == nil {
		s.refresh(ctx, o, true, false)
	}
	if findDeployment(s.snap.Deployments, id) == nil {
		return s.refresh(ctx, o, false, false), fmt.Errorf("deployment %s: %w", id, common.ErrorNotFound)
	}

	s.cur.DeploymentID = id
	s.ledger = nil
	return s.refresh(ctx, o, false, true), nil
}

// SwitchMode changes between diving and ROV and rediscovers deployments.
func (s *Session) SwitchMode(ctx context.Context, mode models.Mode) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	if mode != models.ModeDiving && mode != models.ModeROV {
		return s.refresh(ctx, o, false, false), fmt.Errorf("%w: %q", common.ErrInvalidMode, mode)
	}

	s.cur.Scope.Mode = mode
	s.cur.DeploymentID = ""
	s.ledger = nil
	s.snap = nil
	return s.refresh(ctx, o, true, true), nil
}

// EditTape updates number, chapter, remark or status of a tape of the
// active deployment.
func (s *Session) EditTape(ctx context.Context, tapeID string, patch registry.TapePatch) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.begin()
	if s.snap == nil {
		return s.refresh(ctx, o, true, false), fmt.Errorf("tape %s: %w", tapeID, common.ErrorNotFound)
	}
	i := slices.IndexFunc(s.snap.Tapes, func(t *models.Tape) bool { return t.ID == tapeID })
	if i < 0 {
		return s.refresh(ctx, o, false, false), fmt.Errorf("tape %s: %w", tapeID, common.ErrorNotFound)
	}

	_, err := s.registry.Edit(ctx, s.snap.Tapes[i], patch)
	err = o.absorb(ctx, ViewTape, "edit tape", err)
	if err == nil && s.ledger != nil && s.ledger.Tape().ID == tapeID {
		s.ledger = nil
	}
	return s.refresh(ctx, o, false, true), err
}

// writableDeployment returns a copy of the active deployment, loading the
// deployment list first when the session has not synced yet.
func (s *Session) writableDeployment(ctx context.Context, o *op) (*models.Deployment, error) {
	if s.snap == nil {
		s.refresh(ctx, o, true, true)
	}
	d := findDeployment(s.snap.Deployments, s.cur.DeploymentID)
	if d == nil {
		return nil, common.ErrNoDeployment
	}
	if d.Placeholder {
		return nil, fmt.Errorf("deployment %s: %w", d.ID, common.ErrReadOnly)
	}
	cp := *d
	return &cp, nil
}
