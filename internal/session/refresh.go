package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/ledger/movement"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/reconcile"
)

var errTapesUnavailable = errors.New("tape list unavailable")

// refresh replays every view of the active deployment into a new snapshot.
// A view that fails to load keeps its previous content and is flagged.
func (s *Session) refresh(ctx context.Context, o *op, rediscover, reloadTape bool) *Snapshot {
	now := s.now()
	snap := s.snap.clone()
	snap.GeneratedAt = now
	snap.Scope = s.cur.Scope
	defer func() {
		snap.Status = o.status
		snap.Notices = o.notices
		s.snap = snap
	}()

	if rediscover || snap.Deployments == nil {
		s.loadDeployments(ctx, o, snap)
	}

	d := findDeployment(snap.Deployments, s.cur.DeploymentID)
	if d == nil {
		snap.clearDeploymentViews()
		s.ledger = nil
		return snap
	}
	if snap.Deployment == nil || snap.Deployment.ID != d.ID {
		snap.clearDeploymentViews()
	}
	d = s.reloadDeployment(ctx, o, snap, d)
	snap.Deployment = d

	s.replayMovements(ctx, o, snap, d, now)
	tapesLoaded := s.replayTape(ctx, o, snap, d, reloadTape, now)
	s.mergeTimeline(ctx, o, snap, d, tapesLoaded, now)
	return snap
}

func (s *Session) loadDeployments(ctx context.Context, o *op, snap *Snapshot) {
	res, err := s.discovery.Discover(ctx, s.cur.Scope)
	if err != nil {
		o.fail(ctx, ViewDeployments, StatusInvalid, "load deployments", err)
		return
	}

	snap.Tier = res.Tier
	snap.Deployments = res.Deployments
	if snap.Deployments == nil {
		snap.Deployments = []*models.Deployment{}
	}
	if findDeployment(res.Deployments, s.cur.DeploymentID) == nil {
		s.cur.DeploymentID = ""
		if res.Active != nil {
			s.cur.DeploymentID = res.Active.ID
		}
	}
}

// reloadDeployment picks up status changes written since discovery.
func (s *Session) reloadDeployment(ctx context.Context, o *op, snap *Snapshot, d *models.Deployment) *models.Deployment {
	if d.Placeholder {
		return d
	}
	fresh, err := s.repo.Deployments.Get(ctx, d.Mode, d.ID)
	if err != nil {
		o.fail(ctx, ViewDeployments, StatusInvalid, "reload deployment", err)
		return d
	}

	list := make([]*models.Deployment, len(snap.Deployments))
	for i, x := range snap.Deployments {
		if x.ID == fresh.ID {
			list[i] = fresh
		} else {
			list[i] = x
		}
	}
	snap.Deployments = list
	return fresh
}

func (s *Session) replayMovements(ctx context.Context, o *op, snap *Snapshot, d *models.Deployment, now time.Time) {
	events, err := s.movements.Load(ctx, d.ID)
	if err != nil {
		o.fail(ctx, ViewMovement, StatusInvalid, "load movements", err)
	} else {
		snap.Movements = events
	}

	vocab := s.movements.Vocabulary(d)
	snap.Vocabulary = vocab.Name
	snap.Phase = movement.CurrentPhase(snap.Movements)
	next, ok, err := movement.NextCode(vocab, snap.Movements)
	if err != nil {
		s.logger.Debug(ctx, "advance disabled", "deployment", d.ID, "error", err)
	}
	snap.NextPhase = next
	snap.CanAdvance = ok && err == nil && !d.Placeholder
	snap.CanRollback = movement.CanRollback(snap.Movements) && !d.Placeholder
	snap.ElapsedInField = movement.ElapsedInField(vocab, snap.Movements, now)
	snap.InField = movement.InField(vocab, snap.Movements)
}

// replayTape loads the tape list and the active tape's ledger. It reports
// whether the tape list is current.
func (s *Session) replayTape(ctx context.Context, o *op, snap *Snapshot, d *models.Deployment, reload bool, now time.Time) bool {
	tapes, err := s.registry.ListTapes(ctx, d)
	loaded := err == nil
	if err != nil {
		o.fail(ctx, ViewTape, StatusInvalid, "load tapes", err)
	} else {
		snap.Tapes = tapes
	}

	var active *models.Tape
	if len(snap.Tapes) > 0 {
		active = snap.Tapes[0]
	}
	if active == nil {
		s.ledger = nil
		snap.Tape = nil
		snap.TapeEvents = nil
		snap.Recording = tape.Idle
		snap.CounterSeconds = 0
		snap.Timecode = "00:00:00"
		return loaded
	}

	if s.ledger == nil || s.ledger.Tape().ID != active.ID || reload {
		l := tape.NewLedger(s.repo.TapeEvents, active, s.logger)
		if err := l.Load(ctx); err != nil {
			o.fail(ctx, ViewTape, StatusInvalid, "load tape events", err)
			// The previous timeline stays authoritative for its own tape;
			// a ledger of another tape must not be written through.
			if s.ledger != nil && s.ledger.Tape().ID != active.ID {
				s.ledger = nil
			}
			if s.ledger == nil {
				return loaded
			}
		} else {
			s.ledger = l
		}
	}

	st := s.ledger.State(now)
	snap.Tape = s.ledger.Tape()
	snap.TapeEvents = s.ledger.Events()
	snap.Recording = st.State
	snap.CounterSeconds = st.CounterSeconds
	snap.Timecode = st.Timecode()
	return loaded
}

func (s *Session) mergeTimeline(ctx context.Context, o *op, snap *Snapshot, d *models.Deployment, tapesLoaded bool, now time.Time) {
	if !tapesLoaded {
		o.fail(ctx, ViewTimeline, StatusInvalid, "merge timeline", errTapesUnavailable)
		return
	}

	ids := make([]string, 0, len(snap.Tapes))
	for _, t := range snap.Tapes {
		ids = append(ids, t.ID)
	}
	stored, err := s.repo.TapeEvents.ListByTapes(ctx, ids...)
	if err != nil {
		o.fail(ctx, ViewTimeline, StatusInvalid, "load tape events", err)
		return
	}

	// The active ledger is authoritative for its tape, pending entries
	// included.
	var tapeEvents []*models.TapeEvent
	activeID := ""
	if snap.Tape != nil {
		activeID = snap.Tape.ID
		tapeEvents = append(tapeEvents, snap.TapeEvents...)
	}
	for _, e := range stored {
		if e.TapeID != activeID {
			tapeEvents = append(tapeEvents, e)
		}
	}

	records, err := s.repo.Inspections.ListByDeployment(ctx, d.ID)
	if err != nil {
		o.fail(ctx, ViewTimeline, StatusInvalid, "load inspections", err)
		return
	}

	snap.Timeline = reconcile.MergeTimeline(snap.Movements, tapeEvents, records, now)
}
