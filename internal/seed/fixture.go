// Package seed loads YAML fixtures (deployments with their movements, tapes
// and tape events, plus inspection records) into a FieldLog store.
//
// Records reference each other through fixture keys. A reference that
// matches no key is written verbatim, which is how inspection history
// pointing at unknown deployments or tapes is expressed.
package seed

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/ledger/tape"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Deployments []Deployment `yaml:"deployments"`
	Inspections []Inspection `yaml:"inspections"`
}

type Deployment struct {
	Key         string     `yaml:"key"`
	ID          string     `yaml:"id"`
	Mode        string     `yaml:"mode"`
	SubType     string     `yaml:"sub_type"`
	Name        string     `yaml:"name"`
	Number      string     `yaml:"number"`
	Status      string     `yaml:"status"`
	JobPackID   string     `yaml:"job_pack_id"`
	StructureID string     `yaml:"structure_id"`
	CreatedAt   time.Time  `yaml:"created_at"`
	Movements   []Movement `yaml:"movements"`
	Tapes       []Tape     `yaml:"tapes"`
}

type Movement struct {
	Code   string    `yaml:"code"`
	Time   time.Time `yaml:"time"`
	Remark string    `yaml:"remark"`
}

type Tape struct {
	Key     string      `yaml:"key"`
	ID      string      `yaml:"id"`
	Number  string      `yaml:"number"`
	Chapter int         `yaml:"chapter"`
	Status  string      `yaml:"status"`
	Remark  string      `yaml:"remark"`
	Events  []TapeEvent `yaml:"events"`
}

// TapeEvent is one transport mark. Without a timecode the counter is
// derived from the preceding events the same way the tape ledger does.
type TapeEvent struct {
	Verb       string    `yaml:"verb"`
	Time       time.Time `yaml:"time"`
	Timecode   string    `yaml:"timecode"`
	Inspection string    `yaml:"inspection"`
	Remark     string    `yaml:"remark"`
}

type Inspection struct {
	Key         string `yaml:"key"`
	ID          string `yaml:"id"`
	JobPackID   string `yaml:"job_pack_id"`
	StructureID string `yaml:"structure_id"`
	Mode        string `yaml:"mode"`
	Deployment  string `yaml:"deployment"`
	Tape        string `yaml:"tape"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Anomaly     bool   `yaml:"anomaly"`
	Description string `yaml:"description"`
}

// Load decodes a fixture document. Unknown fields are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: decode fixture: %w", common.ErrInvalidInput, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks modes, verbs and statuses, and that keys are unique.
func (f *Fixture) Validate() error {
	var errs []error
	keys := map[string]bool{}
	addKey := func(kind, key string) {
		if key == "" {
			return
		}
		if keys[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate key %q", kind, key))
		}
		keys[key] = true
	}

	for i, d := range f.Deployments {
		where := fmt.Sprintf("deployments[%d]", i)
		addKey(where, d.Key)
		if _, err := models.ParseMode(d.Mode); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		if d.JobPackID == "" {
			errs = append(errs, fmt.Errorf("%s: job_pack_id is required", where))
		}
		for j, m := range d.Movements {
			if m.Code == "" {
				errs = append(errs, fmt.Errorf("%s.movements[%d]: code is required", where, j))
			}
		}
		for j, t := range d.Tapes {
			twhere := fmt.Sprintf("%s.tapes[%d]", where, j)
			addKey(twhere, t.Key)
			if t.Status != "" {
				if _, err := models.ParseTapeStatus(t.Status); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", twhere, err))
				}
			}
			for k, e := range t.Events {
				if _, err := tape.ParseVerb(e.Verb); err != nil {
					errs = append(errs, fmt.Errorf("%s.events[%d]: %w", twhere, k, err))
				}
			}
		}
	}

	for i, in := range f.Inspections {
		where := fmt.Sprintf("inspections[%d]", i)
		addKey(where, in.Key)
		if in.Mode != "" {
			if _, err := models.ParseMode(in.Mode); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	return nil
}
