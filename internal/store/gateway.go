// Package store is the Event Store Gateway: a thin, table-oriented interface
// over the backing relational store. The ledgers issue every query and write
// through it and assume nothing about transactional guarantees.
//
// Two implementations are provided: SQLGateway (SQLite or PostgreSQL through
// database/sql) and MemoryGateway. Every failure returned by either one wraps
// common.ErrStore, except Update/Delete of a missing id which return
// common.ErrorNotFound.
package store

import (
	"context"
	"fmt"
	"regexp"
)

// Table names used by FieldLog.
const (
	TableDiveDeployments = "dive_deployments"
	TableROVDeployments  = "rov_deployments"
	TableMovementEvents  = "movement_events"
	TableTapes           = "tapes"
	TableTapeEvents      = "tape_events"
	TableInspections     = "inspection_records"
)

// Row is one record keyed by column name. Every table has a text "id".
type Row map[string]any

// Condition matches rows whose Column equals one of Values.
type Condition struct {
	Column string
	Values []any
}

// Eq matches column = v.
func Eq(column string, v any) Condition {
	return Condition{Column: column, Values: []any{v}}
}

// In matches column IN (vs...). An empty list matches nothing.
func In(column string, vs ...any) Condition {
	return Condition{Column: column, Values: vs}
}

// Filter is a conjunction of conditions.
type Filter []Condition

// Sort is one ORDER BY term.
type Sort struct {
	Column string
	Desc   bool
}

// Order describes result ordering and an optional row limit (0 = no limit).
type Order struct {
	By    []Sort
	Limit int
}

// Asc orders by the given columns ascending.
func Asc(columns ...string) Order {
	o := Order{}
	for _, c := range columns {
		o.By = append(o.By, Sort{Column: c})
	}
	return o
}

// Desc orders by the given columns descending.
func Desc(columns ...string) Order {
	o := Order{}
	for _, c := range columns {
		o.By = append(o.By, Sort{Column: c, Desc: true})
	}
	return o
}

// WithLimit returns a copy of o capped at n rows.
func (o Order) WithLimit(n int) Order {
	o.Limit = n
	return o
}

// Gateway is the generic query/insert/update/delete contract.
type Gateway interface {
	// Query returns the rows of table matching filter in the given order.
	Query(ctx context.Context, table string, filter Filter, order Order) ([]Row, error)
	// Insert stores record and returns it with its id assigned.
	Insert(ctx context.Context, table string, record Row) (Row, error)
	// Update applies patch to the row with the given id.
	Update(ctx context.Context, table string, id string, patch Row) error
	// Delete removes the row with the given id.
	Delete(ctx context.Context, table string, id string) error
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(kind, name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}
