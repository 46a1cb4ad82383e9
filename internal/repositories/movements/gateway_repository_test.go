package movements

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

func TestListByDeployment_OrderedByTime(t *testing.T) {
	r := NewGatewayRepository(store.NewMemoryGateway())
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	_, err := r.Create(ctx, &models.MovementEvent{DeploymentID: "d1", Time: base.Add(time.Hour), Code: "AT_WORKSITE"})
	require.NoError(t, err)
	first, err := r.Create(ctx, &models.MovementEvent{DeploymentID: "d1", Time: base, Code: "LEAVING_SURFACE"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	_, err = r.Create(ctx, &models.MovementEvent{DeploymentID: "d2", Time: base, Code: "LEAVING_SURFACE"})
	require.NoError(t, err)

	got, err := r.ListByDeployment(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "LEAVING_SURFACE", got[0].Code)
	assert.Equal(t, "AT_WORKSITE", got[1].Code)
	assert.True(t, base.Equal(got[0].Time))

	require.NoError(t, r.Delete(ctx, first.ID))
	require.ErrorIs(t, r.Delete(ctx, first.ID), common.ErrorNotFound)
}
