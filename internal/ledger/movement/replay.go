package movement

import (
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/models"
)

// sorted returns events by time ascending. Ties keep the input order, which
// is the store order (time, id).
func sorted(events []*models.MovementEvent) []*models.MovementEvent {
	out := make([]*models.MovementEvent, 0, len(events))
	for _, e := range events {
		if e != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Latest returns the most recent event by time, or nil.
func Latest(events []*models.MovementEvent) *models.MovementEvent {
	s := sorted(events)
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// CurrentPhase is the code of the latest event by time, or
// AwaitingDeployment when there are none.
func CurrentPhase(events []*models.MovementEvent) string {
	if e := Latest(events); e != nil {
		return e.Code
	}
	return AwaitingDeployment
}

// NextCode returns the code Advance would append. ok is false once the
// terminal code has been reached. A current phase outside the vocabulary
// returns common.ErrUnknownPhase.
func NextCode(v Vocabulary, events []*models.MovementEvent) (string, bool, error) {
	phase := CurrentPhase(events)
	if phase == AwaitingDeployment {
		if len(v.Codes) == 0 {
			return "", false, nil
		}
		return v.Codes[0], true, nil
	}

	i := v.Index(phase)
	if i < 0 {
		return "", false, fmt.Errorf("%w: %q not in %s vocabulary", common.ErrUnknownPhase, phase, v.Name)
	}
	if i == len(v.Codes)-1 {
		return "", false, nil
	}
	return v.Codes[i+1], true, nil
}

// CanAdvance reports whether Advance would append an event.
func CanAdvance(v Vocabulary, events []*models.MovementEvent) bool {
	_, ok, err := NextCode(v, events)
	return ok && err == nil
}

// CanRollback reports whether Rollback would delete an event.
func CanRollback(events []*models.MovementEvent) bool {
	return CurrentPhase(events) != AwaitingDeployment
}

// ElapsedInField runs from the first start event to the first recovery
// event after it, or to now while no recovery exists. It is zero without a
// start event and never negative.
func ElapsedInField(v Vocabulary, events []*models.MovementEvent, now time.Time) time.Duration {
	s := sorted(events)

	var start *models.MovementEvent
	for _, e := range s {
		if start == nil {
			if v.isStart(e.Code) {
				start = e
			}
			continue
		}
		if v.isRecovery(e.Code) && !e.Time.Before(start.Time) {
			return nonNegative(e.Time.Sub(start.Time))
		}
	}
	if start == nil {
		return 0
	}
	return nonNegative(now.Sub(start.Time))
}

// InField reports whether the elapsed value is still ticking.
func InField(v Vocabulary, events []*models.MovementEvent) bool {
	started := false
	for _, e := range sorted(events) {
		switch {
		case !started && v.isStart(e.Code):
			started = true
		case started && v.isRecovery(e.Code):
			return false
		}
	}
	return started
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}
