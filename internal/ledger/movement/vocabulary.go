package movement

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/fieldlog/internal/models"
)

// AwaitingDeployment is the phase of a deployment with no movement events.
const AwaitingDeployment = "AWAITING_DEPLOYMENT"

// Air and surface-supplied diving codes. Repeat worksite visits are logged
// with the same codes.
const (
	LeavingSurface  = "LEAVING_SURFACE"
	AtWorksite      = "AT_WORKSITE"
	LeavingWorksite = "LEAVING_WORKSITE"
	BackToSurface   = "BACK_TO_SURFACE"
)

// Bell and saturation diving codes.
const (
	BellLaunched         = "BELL_LAUNCHED"
	BellAtDepth          = "BELL_AT_DEPTH"
	DiverExitingBell     = "DIVER_EXITING_BELL"
	DiverReturningToBell = "DIVER_RETURNING_TO_BELL"
	BellAscending        = "BELL_ASCENDING"
	BellAtSurface        = "BELL_AT_SURFACE"
	BellMatedToChamber   = "BELL_MATED_TO_CHAMBER"
)

// Default ROV codes, used when the caller supplies no labels.
const (
	ROVLaunched        = "ROV_LAUNCHED"
	ROVAtWorksite      = "ROV_AT_WORKSITE"
	ROVLeavingWorksite = "ROV_LEAVING_WORKSITE"
	ROVRecovered       = "ROV_RECOVERED"
)

// Vocabulary is the ordered list of movement codes of one deployment kind.
type Vocabulary struct {
	Name  string
	Codes []string
	// Start codes mark the deployment leaving the surface.
	Start []string
	// Recovery codes mark it back at the surface (or mated).
	Recovery []string
}

// Air is the surface-supplied/air diving vocabulary.
func Air() Vocabulary {
	return Vocabulary{
		Name:     "air",
		Codes:    []string{LeavingSurface, AtWorksite, LeavingWorksite, BackToSurface},
		Start:    []string{LeavingSurface},
		Recovery: []string{BackToSurface},
	}
}

// Bell is the bell/saturation diving vocabulary.
func Bell() Vocabulary {
	return Vocabulary{
		Name: "bell",
		Codes: []string{
			BellLaunched, BellAtDepth, DiverExitingBell, DiverReturningToBell,
			BellAscending, BellAtSurface, BellMatedToChamber,
		},
		Start:    []string{BellLaunched},
		Recovery: []string{BellAtSurface, BellMatedToChamber},
	}
}

// ROV builds a vocabulary from caller-supplied labels. The first label is
// the launch and the last the recovery. With fewer than two labels the
// default ROV codes are used.
func ROV(labels ...string) Vocabulary {
	if len(labels) < 2 {
		labels = []string{ROVLaunched, ROVAtWorksite, ROVLeavingWorksite, ROVRecovered}
	}
	codes := slices.Clone(labels)
	return Vocabulary{
		Name:     "rov",
		Codes:    codes,
		Start:    []string{codes[0]},
		Recovery: []string{codes[len(codes)-1]},
	}
}

// VocabularyFor picks the vocabulary for a deployment by mode and sub-type.
func VocabularyFor(d *models.Deployment, rovLabels ...string) Vocabulary {
	if d != nil && d.Mode == models.ModeROV {
		return ROV(rovLabels...)
	}
	if d != nil {
		switch strings.ToUpper(d.SubType) {
		case models.SubTypeBell, models.SubTypeSaturation:
			return Bell()
		}
	}
	return Air()
}

// Index returns the position of code, or -1.
func (v Vocabulary) Index(code string) int {
	return slices.Index(v.Codes, code)
}

// Terminal is the last code of the vocabulary.
func (v Vocabulary) Terminal() string {
	if len(v.Codes) == 0 {
		return ""
	}
	return v.Codes[len(v.Codes)-1]
}

// Contains reports whether code belongs to the vocabulary.
func (v Vocabulary) Contains(code string) bool {
	return v.Index(code) >= 0
}

func (v Vocabulary) isStart(code string) bool    { return slices.Contains(v.Start, code) }
func (v Vocabulary) isRecovery(code string) bool { return slices.Contains(v.Recovery, code) }
