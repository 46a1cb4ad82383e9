// Package reconcile keeps derived tape values consistent after retroactive
// edits and merges the movement, tape and inspection logs into one
// newest-first timeline.
package reconcile

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// Edit is an operator correction of one tape event. Zero fields are left
// unchanged.
type Edit struct {
	Time     *time.Time
	Timecode string
	Verb     string
}

// EditEventTime returns a patched copy of event. An explicit timecode is
// applied first. When the time changes and a start-class event of the same
// tape exists strictly before the new time, the counter is recomputed from
// it and overrides the explicit timecode; without one the timecode is kept.
func EditEventTime(events []*models.TapeEvent, event *models.TapeEvent, edit Edit) (*models.TapeEvent, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: no event to edit", common.ErrInvalidInput)
	}
	out := *event

	if edit.Verb != "" {
		t, err := tape.ParseVerb(edit.Verb)
		if err != nil {
			return nil, err
		}
		out.Type = t
	}

	if edit.Timecode != "" {
		secs, err := timex.ParseTimecode(edit.Timecode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
		}
		out.CounterSeconds = secs
		out.Timecode = timex.FormatTimecode(secs)
	}

	if edit.Time == nil || edit.Time.Equal(event.Time) {
		return &out, nil
	}
	out.Time = edit.Time.UTC()

	if anchor := PrecedingStart(events, &out); anchor != nil {
		out.CounterSeconds = anchor.CounterSeconds + timex.ElapsedSeconds(anchor.Time, out.Time)
		out.Timecode = timex.FormatTimecode(out.CounterSeconds)
	}
	return &out, nil
}

// PrecedingStart finds the latest START or RESUME of e's tape strictly
// before e.Time, ignoring e itself.
func PrecedingStart(events []*models.TapeEvent, e *models.TapeEvent) *models.TapeEvent {
	var found *models.TapeEvent
	for _, c := range events {
		if c == nil || c.ID == e.ID || c.TapeID != e.TapeID {
			continue
		}
		if !c.Type.IsStartClass() || !c.Time.Before(e.Time) {
			continue
		}
		if found == nil || c.Time.After(found.Time) {
			found = c
		}
	}
	return found
}
