package tape

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// State is the derived recording state of a tape.
type State string

const (
	Idle      State = "IDLE"
	Recording State = "RECORDING"
	Paused    State = "PAUSED"
)

// Status is the result of replaying a tape's events.
type Status struct {
	State          State
	CounterSeconds int64
	// Last is the transport event the status was derived from.
	Last *models.TapeEvent
}

// Timecode formats the counter as HH:MM:SS.
func (s Status) Timecode() string {
	return timex.FormatTimecode(s.CounterSeconds)
}

// Sorted returns a copy of events by time ascending. Ties are broken by id
// so the result does not depend on insertion order.
func Sorted(events []*models.TapeEvent) []*models.TapeEvent {
	out := make([]*models.TapeEvent, 0, len(events))
	for _, e := range events {
		if e != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CurrentState replays events: the latest transport event by time decides.
// START and RESUME record with a counter that keeps running from the
// stored value; PAUSE freezes it; STOP is idle. PRE_MARK does not change
// the state.
func CurrentState(events []*models.TapeEvent, now time.Time) Status {
	s := Sorted(events)
	for i := len(s) - 1; i >= 0; i-- {
		e := s[i]
		if !e.Type.IsTransport() {
			continue
		}
		switch e.Type {
		case models.TapeStart, models.TapeResume:
			return Status{
				State:          Recording,
				CounterSeconds: e.CounterSeconds + timex.ElapsedSeconds(e.Time, now),
				Last:           e,
			}
		case models.TapePause:
			return Status{State: Paused, CounterSeconds: e.CounterSeconds, Last: e}
		default:
			return Status{State: Idle, CounterSeconds: e.CounterSeconds, Last: e}
		}
	}
	return Status{State: Idle}
}

// CounterFor is the counter value an event of type t logged at now stores.
// START and STOP reset the running counter.
func CounterFor(events []*models.TapeEvent, t models.TapeEventType, now time.Time) int64 {
	if t == models.TapeStart || t == models.TapeStop {
		return 0
	}
	return CurrentState(events, now).CounterSeconds
}
