package reconcile

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// MergeTimeline builds the newest-first display log. Tape events keep their
// own label. Inspection records become ANOMALY or INSPECTION rows unless a
// tape event already references them; no two rows share an inspection id.
func MergeTimeline(moves []*models.MovementEvent, tapeEvents []*models.TapeEvent, records []*models.InspectionRecord, now time.Time) []models.TimelineEntry {
	out := make([]models.TimelineEntry, 0, len(moves)+len(tapeEvents)+len(records))

	for _, m := range moves {
		if m == nil {
			continue
		}
		out = append(out, models.TimelineEntry{
			Time:     m.Time,
			Kind:     models.TimelineMovement,
			Label:    m.Code,
			SourceID: m.ID,
			Remark:   m.Remark,
		})
	}

	// The earliest tape event keeps a shared inspection reference.
	claimed := make(map[string]bool)
	for _, e := range tape.Sorted(tapeEvents) {
		entry := models.TimelineEntry{
			Time:     e.Time,
			Kind:     models.TimelineTape,
			Label:    string(e.Type),
			SourceID: e.ID,
			Timecode: e.Timecode,
			Remark:   e.Remark,
			Pending:  e.Pending,
		}
		if e.InspectionID != "" && !claimed[e.InspectionID] {
			claimed[e.InspectionID] = true
			entry.InspectionID = e.InspectionID
		}
		out = append(out, entry)
	}

	for _, r := range records {
		if r == nil || r.ID == "" || claimed[r.ID] {
			continue
		}
		claimed[r.ID] = true

		kind := models.TimelineInspection
		if r.Anomaly {
			kind = models.TimelineAnomaly
		}
		at, _ := timex.CombineDateTime(r.Date, r.Time, now)
		out = append(out, models.TimelineEntry{
			Time:         at,
			Kind:         kind,
			Label:        string(kind),
			SourceID:     r.ID,
			InspectionID: r.ID,
			Remark:       r.Description,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}
