// Package tape is the tape ledger: recording-control marks on one tape and
// the recording state and counter derived from them by replay.
package tape

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/tapeevents"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
	"github.com/google/uuid"
)

// TempIDPrefix marks optimistic entries the store has not confirmed.
const TempIDPrefix = "tmp-"

// IsTempID reports whether id was assigned locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Ledger holds the in-memory timeline of one tape.
type Ledger struct {
	mu     sync.Mutex
	repo   tapeevents.Repository
	tape   *models.Tape
	events []*models.TapeEvent
	logger logging.Logger
	tempID func() string
}

func NewLedger(repo tapeevents.Repository, t *models.Tape, logger logging.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		tape:   t,
		logger: logger.With("module", "tape", "tape", t.ID),
		tempID: func() string { return TempIDPrefix + uuid.NewString() },
	}
}

// Tape returns the tape the ledger writes to.
func (l *Ledger) Tape() *models.Tape {
	return l.tape
}

// Load replaces the in-memory timeline with the stored events. Unconfirmed
// optimistic entries are dropped.
func (l *Ledger) Load(ctx context.Context) error {
	events, err := l.repo.ListByTapes(ctx, l.tape.ID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.events = events
	l.mu.Unlock()
	return nil
}

// Events returns a copy of the timeline by time ascending.
func (l *Ledger) Events() []*models.TapeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Sorted(l.events)
}

// State replays the in-memory timeline at now.
func (l *Ledger) State(now time.Time) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CurrentState(l.events, now)
}

// Log records an event of type t at now. The entry is appended with a
// temporary id before the store write and confirmed afterwards. When the
// write fails the entry stays in the timeline as pending and the error is
// returned alongside it.
func (l *Ledger) Log(ctx context.Context, t models.TapeEventType, now time.Time, inspectionID, remark string) (*models.TapeEvent, error) {
	if l.tape.Stub {
		return nil, fmt.Errorf("tape %s: %w", l.tape.ID, common.ErrReadOnly)
	}

	l.mu.Lock()
	counter := CounterFor(l.events, t, now)
	pending := &models.TapeEvent{
		ID:             l.tempID(),
		TapeID:         l.tape.ID,
		Type:           t,
		Time:           now,
		Timecode:       timex.FormatTimecode(counter),
		CounterSeconds: counter,
		InspectionID:   inspectionID,
		Remark:         remark,
		Pending:        true,
	}
	l.events = append(l.events, pending)
	l.mu.Unlock()

	created, err := l.repo.Create(ctx, pending)
	if err != nil {
		l.logger.Warn(ctx, "tape event left unconfirmed", "type", t, "temp_id", pending.ID, "error", err)
		out := *pending
		return &out, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(pending.ID); i >= 0 {
		l.events[i] = created
	} else {
		l.events = append(l.events, created)
	}
	l.logger.Info(ctx, "tape event logged", "type", t, "id", created.ID, "timecode", created.Timecode)

	out := *created
	return &out, nil
}

// Update persists an edited event and replaces it in the timeline.
func (l *Ledger) Update(ctx context.Context, e *models.TapeEvent) error {
	if IsTempID(e.ID) {
		return fmt.Errorf("tape event %s: %w", e.ID, common.ErrReadOnly)
	}
	if err := l.repo.Update(ctx, e); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	updated := *e
	if i := l.indexOf(e.ID); i >= 0 {
		l.events[i] = &updated
	}
	return nil
}

// Rollback deletes one event and replays the remaining timeline. Sibling
// counters are not adjusted. An unconfirmed entry is only dropped locally.
func (l *Ledger) Rollback(ctx context.Context, eventID string, now time.Time) (Status, error) {
	if !IsTempID(eventID) {
		if err := l.repo.Delete(ctx, eventID); err != nil {
			return l.State(now), err
		}
	}

	l.mu.Lock()
	if i := l.indexOf(eventID); i >= 0 {
		l.events = slices.Delete(l.events, i, i+1)
	}
	st := CurrentState(l.events, now)
	l.mu.Unlock()

	l.logger.Info(ctx, "tape event rolled back", "id", eventID, "state", st.State)
	return st, nil
}

// Find returns the event with the given id from the timeline.
func (l *Ledger) Find(id string) (*models.TapeEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		e := *l.events[i]
		return &e, true
	}
	return nil, false
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.events, func(e *models.TapeEvent) bool { return e.ID == id })
}
