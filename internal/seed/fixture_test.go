package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	f, err := Load(strings.NewReader(riserFixture))
	require.NoError(t, err)

	require.Len(t, f.Deployments, 1)
	d := f.Deployments[0]
	assert.Equal(t, "d1", d.Key)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), d.CreatedAt.UTC())
	require.Len(t, d.Movements, 2)
	assert.Equal(t, "good vis", d.Movements[1].Remark)
	require.Len(t, d.Tapes, 1)
	require.Len(t, d.Tapes[0].Events, 3)
	assert.Equal(t, "i1", d.Tapes[0].Events[2].Inspection)

	require.Len(t, f.Inspections, 2)
	assert.True(t, f.Inspections[0].Anomaly)
	assert.Equal(t, "09:10:00", f.Inspections[0].Time)
}

func TestLoad_Empty(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Deployments)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc:  "deployments:\n  - mode: DIVING\n    job_pack_id: jp\n    colour: red\n",
			want: "colour",
		},
		{
			name: "bad mode",
			doc:  "deployments:\n  - mode: SUBMARINE\n    job_pack_id: jp\n",
			want: "unknown mode",
		},
		{
			name: "missing job pack",
			doc:  "deployments:\n  - mode: ROV\n",
			want: "job_pack_id is required",
		},
		{
			name: "bad verb",
			doc:  "deployments:\n  - mode: ROV\n    job_pack_id: jp\n    tapes:\n      - number: T1\n        events:\n          - verb: rewind\n",
			want: "unknown tape verb",
		},
		{
			name: "bad tape status",
			doc:  "deployments:\n  - mode: ROV\n    job_pack_id: jp\n    tapes:\n      - number: T1\n        status: LOST\n",
			want: "unknown tape status",
		},
		{
			name: "duplicate key",
			doc:  "deployments:\n  - key: a\n    mode: ROV\n    job_pack_id: jp\ninspections:\n  - key: a\n",
			want: "duplicate key",
		},
		{
			name: "movement without code",
			doc:  "deployments:\n  - mode: ROV\n    job_pack_id: jp\n    movements:\n      - remark: x\n",
			want: "code is required",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
