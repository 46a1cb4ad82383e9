package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/session"
	"google.golang.org/protobuf/types/known/structpb"
)

// SyncRequest opens or refreshes the operator's session. A scope that
// differs from the current one starts a new session.
type SyncRequest struct {
	Scope        discovery.Scope `json:"scope"`
	DeploymentID string          `json:"deployment_id,omitempty"`
}

type LogMovementRequest struct {
	Code   string `json:"code"`
	Remark string `json:"remark,omitempty"`
}

type LogTapeEventRequest struct {
	Verb         string `json:"verb"`
	InspectionID string `json:"inspection_id,omitempty"`
	Remark       string `json:"remark,omitempty"`
}

type EditTapeEventRequest struct {
	ID       string     `json:"id"`
	Timecode string     `json:"timecode,omitempty"`
	Verb     string     `json:"verb,omitempty"`
	Time     *time.Time `json:"time,omitempty"`
}

// IDRequest addresses one event or deployment.
type IDRequest struct {
	ID string `json:"id"`
}

type SwitchModeRequest struct {
	Mode models.Mode `json:"mode"`
}

// EditTapeRequest carries a tape patch; absent fields are unchanged.
type EditTapeRequest struct {
	TapeID  string  `json:"tape_id"`
	Number  *string `json:"number,omitempty"`
	Chapter *int    `json:"chapter,omitempty"`
	Remark  *string `json:"remark,omitempty"`
	Status  *string `json:"status,omitempty"`
}

type FootageRequest struct {
	TapeID string `json:"tape_id"`
}

type FootageReply struct {
	Key  string       `json:"key,omitempty"`
	URL  string       `json:"url,omitempty"`
	Tape *models.Tape `json:"tape,omitempty"`
}

// SnapshotReply is returned by every session method.
type SnapshotReply struct {
	Snapshot *session.Snapshot `json:"snapshot"`
}

type PingReply struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Encode converts v to a Struct through its JSON form.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return structpb.NewStruct(m)
}

// Decode fills v from s. A nil Struct leaves v untouched.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
