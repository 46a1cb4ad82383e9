package models

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the kind of deployment being worked.
type Mode string

const (
	ModeDiving Mode = "DIVING"
	ModeROV    Mode = "ROV"
)

// ParseMode accepts DIVING/ROV in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeDiving, "DIVE":
		return ModeDiving, nil
	case ModeROV:
		return ModeROV, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Diving sub-types. ROV sub-types are free text.
const (
	SubTypeAir        = "AIR"
	SubTypeSurface    = "SURFACE"
	SubTypeBell       = "BELL"
	SubTypeSaturation = "SATURATION"
)

// DeploymentStatus tracks whether the deployment is still being worked.
type DeploymentStatus string

const (
	DeploymentInProgress DeploymentStatus = "IN_PROGRESS"
	DeploymentCompleted  DeploymentStatus = "COMPLETED"
)

// Deployment is one diving or ROV job instance.
type Deployment struct {
	ID          string           `json:"id"`
	Mode        Mode             `json:"mode"`
	SubType     string           `json:"sub_type"`
	Name        string           `json:"name"`
	Number      string           `json:"number"`
	Status      DeploymentStatus `json:"status"`
	JobPackID   string           `json:"job_pack_id"`
	StructureID string           `json:"structure_id"`
	CreatedAt   time.Time        `json:"created_at"`

	// Raw is the row the deployment was read from; nil for placeholders.
	Raw map[string]any `json:"-"`

	// Placeholder is set on deployments synthesized from inspection history.
	// They are never written back to the store.
	Placeholder bool `json:"placeholder,omitempty"`
}

// DisplayName is what the deployment selector shows.
func (d *Deployment) DisplayName() string {
	switch {
	case d.Name != "" && d.Number != "":
		return d.Number + " " + d.Name
	case d.Name != "":
		return d.Name
	case d.Number != "":
		return d.Number
	default:
		return d.ID
	}
}
