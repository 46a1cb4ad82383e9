package seed

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/dbx"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/repomanager"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
	"github.com/google/uuid"
)

// Summary counts the records written.
type Summary struct {
	Deployments int
	Movements   int
	Tapes       int
	TapeEvents  int
	Inspections int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d deployments, %d movements, %d tapes, %d tape events, %d inspections",
		s.Deployments, s.Movements, s.Tapes, s.TapeEvents, s.Inspections)
}

// Run writes f inside one transaction on db.
func Run(ctx context.Context, db dbx.TxBeginner, m repomanager.RepositoryManager, f *Fixture, now time.Time) (Summary, error) {
	var sum Summary
	err := dbx.WithTx(ctx, db, &sql.TxOptions{}, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		sum, err = Apply(ctx, m.Bind(m.Gateway(tx)), f, now)
		return err
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// Apply writes f through repos. It stops at the first failed write; the
// caller owns atomicity.
func Apply(ctx context.Context, repos repomanager.Repositories, f *Fixture, now time.Time) (Summary, error) {
	var sum Summary
	ids := map[string]string{}
	resolve := func(ref string) string {
		if id, ok := ids[ref]; ok {
			return id
		}
		return ref
	}

	// Inspection ids are fixed up front so tape events can reference them.
	inspectionIDs := make([]string, len(f.Inspections))
	for i, in := range f.Inspections {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		inspectionIDs[i] = id
		if in.Key != "" {
			ids[in.Key] = id
		}
	}

	for _, d := range f.Deployments {
		mode, _ := models.ParseMode(d.Mode)
		created := d.CreatedAt
		if created.IsZero() {
			created = now
		}
		dep, err := repos.Deployments.Create(ctx, &models.Deployment{
			ID:          d.ID,
			Mode:        mode,
			SubType:     d.SubType,
			Name:        d.Name,
			Number:      d.Number,
			Status:      models.DeploymentStatus(d.Status),
			JobPackID:   d.JobPackID,
			StructureID: d.StructureID,
			CreatedAt:   created.UTC(),
		})
		if err != nil {
			return sum, fmt.Errorf("deployment %q: %w", d.Name, err)
		}
		sum.Deployments++
		if d.Key != "" {
			ids[d.Key] = dep.ID
		}

		for _, m := range d.Movements {
			at := m.Time
			if at.IsZero() {
				at = now
			}
			if _, err := repos.Movements.Create(ctx, &models.MovementEvent{
				DeploymentID: dep.ID,
				Time:         at.UTC(),
				Code:         m.Code,
				Remark:       m.Remark,
			}); err != nil {
				return sum, fmt.Errorf("movement %s: %w", m.Code, err)
			}
			sum.Movements++
		}

		for _, t := range d.Tapes {
			status := models.TapeActive
			if t.Status != "" {
				status, _ = models.ParseTapeStatus(t.Status)
			}
			tp, err := repos.Tapes.Create(ctx, &models.Tape{
				ID:           t.ID,
				DeploymentID: dep.ID,
				Number:       t.Number,
				Chapter:      t.Chapter,
				Status:       status,
				Remark:       t.Remark,
				CreatedAt:    created.UTC(),
			})
			if err != nil {
				return sum, fmt.Errorf("tape %s: %w", t.Number, err)
			}
			sum.Tapes++
			if t.Key != "" {
				ids[t.Key] = tp.ID
			}

			n, err := writeTapeEvents(ctx, repos, tp.ID, t.Events, resolve, now)
			sum.TapeEvents += n
			if err != nil {
				return sum, fmt.Errorf("tape %s: %w", t.Number, err)
			}
		}
	}

	for i, in := range f.Inspections {
		var mode models.Mode
		if in.Mode != "" {
			mode, _ = models.ParseMode(in.Mode)
		}
		if _, err := repos.Inspections.Create(ctx, &models.InspectionRecord{
			ID:           inspectionIDs[i],
			JobPackID:    in.JobPackID,
			StructureID:  in.StructureID,
			Mode:         mode,
			DeploymentID: resolve(in.Deployment),
			TapeID:       resolve(in.Tape),
			Date:         in.Date,
			Time:         in.Time,
			Anomaly:      in.Anomaly,
			Description:  in.Description,
		}); err != nil {
			return sum, fmt.Errorf("inspection %s: %w", inspectionIDs[i], err)
		}
		sum.Inspections++
	}

	return sum, nil
}

func writeTapeEvents(ctx context.Context, repos repomanager.Repositories, tapeID string, events []TapeEvent, resolve func(string) string, now time.Time) (int, error) {
	sorted := make([]TapeEvent, len(events))
	copy(sorted, events)
	for i := range sorted {
		if sorted[i].Time.IsZero() {
			sorted[i].Time = now
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var written []*models.TapeEvent
	for _, e := range sorted {
		typ, err := tape.ParseVerb(e.Verb)
		if err != nil {
			return len(written), err
		}
		at := e.Time.UTC()

		counter := tape.CounterFor(written, typ, at)
		if e.Timecode != "" {
			if counter, err = timex.ParseTimecode(e.Timecode); err != nil {
				return len(written), err
			}
		}

		created, err := repos.TapeEvents.Create(ctx, &models.TapeEvent{
			TapeID:         tapeID,
			Type:           typ,
			Time:           at,
			Timecode:       timex.FormatTimecode(counter),
			CounterSeconds: counter,
			InspectionID:   resolve(e.Inspection),
			Remark:         e.Remark,
		})
		if err != nil {
			return len(written), err
		}
		written = append(written, created)
	}
	return len(written), nil
}
