package tapeevents

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTapeEventsRepository(t *testing.T) {
	r := NewGatewayRepository(store.NewMemoryGateway())
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	pause, err := r.Create(ctx, &models.TapeEvent{TapeID: "t1", Type: models.TapePause, Time: base.Add(time.Minute), Timecode: "00:01:00", CounterSeconds: 60, Pending: true})
	require.NoError(t, err)
	assert.False(t, pause.Pending)
	_, err = r.Create(ctx, &models.TapeEvent{TapeID: "t1", Type: models.TapeStart, Time: base, Timecode: "00:00:00", InspectionID: "i1"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.TapeEvent{TapeID: "t2", Type: models.TapeStart, Time: base})
	require.NoError(t, err)

	list, err := r.ListByTapes(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.TapeStart, list[0].Type)
	assert.Equal(t, "i1", list[0].InspectionID)

	all, err := r.ListByTapes(ctx, "t1", "t2")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pause.Time = base.Add(2 * time.Minute)
	pause.CounterSeconds = 120
	pause.Timecode = "00:02:00"
	require.NoError(t, r.Update(ctx, pause))
	got, err := r.Get(ctx, pause.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.CounterSeconds)
	assert.True(t, pause.Time.Equal(got.Time))

	require.NoError(t, r.Delete(ctx, pause.ID))
	_, err = r.Get(ctx, pause.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
