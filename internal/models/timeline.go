package models

import "time"

// TimelineKind tells the display which table an entry came from.
type TimelineKind string

const (
	TimelineMovement   TimelineKind = "MOVEMENT"
	TimelineTape       TimelineKind = "TAPE"
	TimelineAnomaly    TimelineKind = "ANOMALY"
	TimelineInspection TimelineKind = "INSPECTION"
)

// TimelineEntry is one row of the merged log display.
type TimelineEntry struct {
	Time         time.Time    `json:"time"`
	Kind         TimelineKind `json:"kind"`
	Label        string       `json:"label"`
	SourceID     string       `json:"source_id"`
	Timecode     string       `json:"timecode,omitempty"`
	InspectionID string       `json:"inspection_id,omitempty"`
	Remark       string       `json:"remark,omitempty"`
	Pending      bool         `json:"pending,omitempty"`
}
