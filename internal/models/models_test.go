package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("rov")
	require.NoError(t, err)
	assert.Equal(t, ModeROV, m)

	m, err = ParseMode(" Diving ")
	require.NoError(t, err)
	assert.Equal(t, ModeDiving, m)

	_, err = ParseMode("submarine")
	require.Error(t, err)
}

func TestParseTapeStatus(t *testing.T) {
	st, err := ParseTapeStatus("full")
	require.NoError(t, err)
	assert.Equal(t, TapeFull, st)

	_, err = ParseTapeStatus("lost")
	require.Error(t, err)
}

func TestTapeEventType_Classes(t *testing.T) {
	assert.True(t, TapeStart.IsStartClass())
	assert.True(t, TapeResume.IsStartClass())
	assert.False(t, TapePause.IsStartClass())
	assert.False(t, TapePreMark.IsTransport())
	assert.True(t, TapeStop.IsTransport())
}

func TestDeployment_DisplayName(t *testing.T) {
	assert.Equal(t, "D-7 Riser survey", (&Deployment{Number: "D-7", Name: "Riser survey"}).DisplayName())
	assert.Equal(t, "Legacy Records", (&Deployment{Name: "Legacy Records"}).DisplayName())
	assert.Equal(t, "D-7", (&Deployment{Number: "D-7"}).DisplayName())
	assert.Equal(t, "x", (&Deployment{ID: "x"}).DisplayName())
}
