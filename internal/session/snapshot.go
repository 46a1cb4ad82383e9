package session

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/models"
)

// View names a part of the snapshot that loads and saves independently.
type View string

const (
	ViewDeployments View = "deployments"
	ViewMovement    View = "movement"
	ViewTape        View = "tape"
	ViewTimeline    View = "timeline"
)

// Views lists every view in display order.
var Views = []View{ViewDeployments, ViewMovement, ViewTape, ViewTimeline}

// ViewStatus tells the display whether a view is current.
type ViewStatus string

const (
	StatusOK ViewStatus = "ok"
	// StatusSaveError means the last write of the view failed; the view
	// shows what the store holds.
	StatusSaveError ViewStatus = "save_error"
	// StatusInvalid means the view could not be reloaded and shows the
	// previous state.
	StatusInvalid ViewStatus = "invalid"
)

// Notice is a non-blocking message for the operator.
type Notice struct {
	Time    time.Time `json:"time"`
	View    View      `json:"view"`
	Message string    `json:"message"`
}

// Snapshot is the derived state of a session after one operation.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Scope       discovery.Scope `json:"scope"`

	Tier        int                  `json:"tier"`
	Deployments []*models.Deployment `json:"deployments"`
	Deployment  *models.Deployment   `json:"deployment,omitempty"`

	Vocabulary     string                  `json:"vocabulary,omitempty"`
	Movements      []*models.MovementEvent `json:"movements,omitempty"`
	Phase          string                  `json:"phase,omitempty"`
	NextPhase      string                  `json:"next_phase,omitempty"`
	CanAdvance     bool                    `json:"can_advance"`
	CanRollback    bool                    `json:"can_rollback"`
	ElapsedInField time.Duration           `json:"elapsed_in_field"`
	InField        bool                    `json:"in_field"`

	Tapes          []*models.Tape      `json:"tapes,omitempty"`
	Tape           *models.Tape        `json:"tape,omitempty"`
	TapeEvents     []*models.TapeEvent `json:"tape_events,omitempty"`
	Recording      tape.State          `json:"recording"`
	CounterSeconds int64               `json:"counter_seconds"`
	Timecode       string              `json:"timecode"`

	Timeline []models.TimelineEntry `json:"timeline,omitempty"`

	Status  map[View]ViewStatus `json:"status"`
	Notices []Notice            `json:"notices,omitempty"`
}

// OK reports whether every view is current.
func (s *Snapshot) OK() bool {
	for _, st := range s.Status {
		if st != StatusOK {
			return false
		}
	}
	return true
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return &Snapshot{Recording: tape.Idle, Timecode: "00:00:00"}
	}
	out := *s
	out.Status = nil
	out.Notices = nil
	return &out
}

// clearDeploymentViews drops everything derived from the active deployment.
func (s *Snapshot) clearDeploymentViews() {
	s.Deployment = nil
	s.Vocabulary = ""
	s.Movements = nil
	s.Phase = ""
	s.NextPhase = ""
	s.CanAdvance = false
	s.CanRollback = false
	s.ElapsedInField = 0
	s.InField = false
	s.Tapes = nil
	s.Tape = nil
	s.TapeEvents = nil
	s.Recording = tape.Idle
	s.CounterSeconds = 0
	s.Timecode = "00:00:00"
	s.Timeline = nil
}

func findDeployment(list []*models.Deployment, id string) *models.Deployment {
	if id == "" {
		return nil
	}
	i := slices.IndexFunc(list, func(d *models.Deployment) bool { return d.ID == id })
	if i < 0 {
		return nil
	}
	return list[i]
}
