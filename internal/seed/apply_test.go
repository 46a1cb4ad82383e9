package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/repomanager"
	"github.com/dmitrijs2005/fieldlog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var seedNow = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

func mustLoad(t *testing.T, doc string) *Fixture {
	t.Helper()
	f, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	return f
}

func TestApply_Memory(t *testing.T) {
	ctx := context.Background()
	repos := repomanager.Bind(store.NewMemoryGateway())

	sum, err := Apply(ctx, repos, mustLoad(t, riserFixture), seedNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Deployments: 1, Movements: 2, Tapes: 1, TapeEvents: 3, Inspections: 2}, sum)
	assert.Equal(t, "1 deployments, 2 movements, 1 tapes, 3 tape events, 2 inspections", sum.String())

	deps, err := repos.Deployments.ListByScope(ctx, models.ModeDiving, "jp-7", "riser-a", 10)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	dep := deps[0]
	assert.Equal(t, "Riser survey", dep.Name)
	assert.Equal(t, models.DeploymentInProgress, dep.Status)

	moves, err := repos.Movements.ListByDeployment(ctx, dep.ID)
	require.NoError(t, err)
	require.Len(t, moves, 2)

	tapes, err := repos.Tapes.ListByDeployment(ctx, dep.ID)
	require.NoError(t, err)
	require.Len(t, tapes, 1)
	assert.Equal(t, 1, tapes[0].Chapter)

	events, err := repos.TapeEvents.ListByTapes(ctx, tapes[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	byType := map[models.TapeEventType]*models.TapeEvent{}
	for _, e := range events {
		byType[e.Type] = e
	}
	assert.Equal(t, "00:00:00", byType[models.TapeStart].Timecode)
	assert.Equal(t, "00:04:00", byType[models.TapePreMark].Timecode)
	assert.Equal(t, "insp-1", byType[models.TapePreMark].InspectionID)
	assert.Equal(t, int64(600), byType[models.TapePause].CounterSeconds)

	recs, err := repos.Inspections.ListByScope(ctx, "jp-7", "riser-a", models.ModeDiving)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	refs := map[string]string{}
	for _, r := range recs {
		refs[r.DeploymentID] = r.TapeID
	}
	assert.Equal(t, tapes[0].ID, refs[dep.ID])
	assert.Equal(t, "legacy-tape", refs["legacy-dep"])
}

func TestApply_ExplicitTimecodeWins(t *testing.T) {
	ctx := context.Background()
	repos := repomanager.Bind(store.NewMemoryGateway())

	doc := `
deployments:
  - mode: ROV
    sub_type: WORK CLASS
    job_pack_id: jp
    tapes:
      - id: tape-x
        number: R-1
        events:
          - verb: resume
            time: 2024-05-01T10:00:00Z
            timecode: "01:30:00"
`
	_, err := Apply(ctx, repos, mustLoad(t, doc), seedNow)
	require.NoError(t, err)

	events, err := repos.TapeEvents.ListByTapes(ctx, "tape-x")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(5400), events[0].CounterSeconds)
}

func openSQLite(t *testing.T) (*sql.DB, *repomanager.SQLRepositoryManager) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(store.DialectSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	return db, m
}

func TestRun_SQLiteCommits(t *testing.T) {
	ctx := context.Background()
	db, m := openSQLite(t)

	sum, err := Run(ctx, db, m, mustLoad(t, riserFixture), seedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TapeEvents)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tape_events`).Scan(&n))
	assert.Equal(t, 3, n)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dive_deployments`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRun_SQLiteRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db, m := openSQLite(t)

	doc := `
deployments:
  - id: dup
    mode: DIVING
    job_pack_id: jp
    movements:
      - code: LEAVING_SURFACE
        time: 2024-05-01T09:00:00Z
  - id: dup
    mode: DIVING
    job_pack_id: jp
`
	_, err := Run(ctx, db, m, mustLoad(t, doc), seedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStore)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movement_events`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dive_deployments`).Scan(&n))
	assert.Zero(t, n)
}
