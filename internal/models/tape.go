package models

import (
	"fmt"
	"strings"
	"time"
)

// TapeStatus is the lifecycle state of a recording container.
type TapeStatus string

const (
	TapeActive TapeStatus = "ACTIVE"
	TapeFull   TapeStatus = "FULL"
	TapeClosed TapeStatus = "CLOSED"
)

// ParseTapeStatus validates an operator supplied status.
func ParseTapeStatus(s string) (TapeStatus, error) {
	switch st := TapeStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TapeActive, TapeFull, TapeClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown tape status %q", s)
}

// Upload states of the footage object attached to a tape.
const (
	UploadNone      = ""
	UploadPending   = "pending"
	UploadCompleted = "completed"
)

// Tape is a recording reel/session container owned by a deployment.
type Tape struct {
	ID           string     `json:"id"`
	DeploymentID string     `json:"deployment_id"`
	Number       string     `json:"number"`
	Chapter      int        `json:"chapter"`
	Status       TapeStatus `json:"status"`
	Remark       string     `json:"remark,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	StorageKey   string `json:"storage_key,omitempty"`
	UploadStatus string `json:"upload_status,omitempty"`

	// Stub marks a read-only tape synthesized from inspection references.
	Stub bool `json:"stub,omitempty"`
}

// TapeEventType is a canonical recording-control mark.
type TapeEventType string

const (
	TapeStart   TapeEventType = "START"
	TapePause   TapeEventType = "PAUSE"
	TapeResume  TapeEventType = "RESUME"
	TapeStop    TapeEventType = "STOP"
	TapePreMark TapeEventType = "PRE_MARK"
)

// IsStartClass reports whether the counter runs after an event of type t.
func (t TapeEventType) IsStartClass() bool {
	return t == TapeStart || t == TapeResume
}

// IsTransport reports whether t changes the recording state. PRE_MARK is a
// zero-duration mark, not a transport control.
func (t TapeEventType) IsTransport() bool {
	switch t {
	case TapeStart, TapePause, TapeResume, TapeStop:
		return true
	}
	return false
}

// TapeEvent is one recording-control mark on a tape.
type TapeEvent struct {
	ID             string        `json:"id"`
	TapeID         string        `json:"tape_id"`
	Type           TapeEventType `json:"type"`
	Time           time.Time     `json:"time"`
	Timecode       string        `json:"timecode"`
	CounterSeconds int64         `json:"counter_seconds"`
	InspectionID   string        `json:"inspection_id,omitempty"`
	Remark         string        `json:"remark,omitempty"`

	// Pending is true for an optimistic entry the store has not confirmed.
	Pending bool `json:"pending,omitempty"`
}
