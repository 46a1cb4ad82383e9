// Package storetest holds gateway helpers for tests of packages built on
// store.Gateway.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/store"
)

// Operation names accepted by FaultyGateway.Fail.
const (
	OpQuery  = "query"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// FaultyGateway wraps a gateway and fails selected operations. It also counts
// writes so tests can assert that a code path never mutated the store.
type FaultyGateway struct {
	store.Gateway

	mu     sync.Mutex
	faults map[string]error
	writes int
}

// NewFaultyGateway wraps inner.
func NewFaultyGateway(inner store.Gateway) *FaultyGateway {
	return &FaultyGateway{Gateway: inner, faults: make(map[string]error)}
}

func key(op, table string) string { return op + ":" + table }

// Fail makes op on table return an error wrapping common.ErrStore until
// Heal is called.
func (f *FaultyGateway) Fail(op, table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[key(op, table)] = fmt.Errorf("%w: injected %s failure on %s", common.ErrStore, op, table)
}

// Heal clears every injected failure.
func (f *FaultyGateway) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = make(map[string]error)
}

// Writes returns the number of successful insert/update/delete calls.
func (f *FaultyGateway) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FaultyGateway) fault(op, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.faults[key(op, table)]
}

func (f *FaultyGateway) wrote() {
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
}

func (f *FaultyGateway) Query(ctx context.Context, table string, filter store.Filter, order store.Order) ([]store.Row, error) {
	if err := f.fault(OpQuery, table); err != nil {
		return nil, err
	}
	return f.Gateway.Query(ctx, table, filter, order)
}

func (f *FaultyGateway) Insert(ctx context.Context, table string, record store.Row) (store.Row, error) {
	if err := f.fault(OpInsert, table); err != nil {
		return nil, err
	}
	out, err := f.Gateway.Insert(ctx, table, record)
	if err == nil {
		f.wrote()
	}
	return out, err
}

func (f *FaultyGateway) Update(ctx context.Context, table string, id string, patch store.Row) error {
	if err := f.fault(OpUpdate, table); err != nil {
		return err
	}
	err := f.Gateway.Update(ctx, table, id, patch)
	if err == nil {
		f.wrote()
	}
	return err
}

func (f *FaultyGateway) Delete(ctx context.Context, table string, id string) error {
	if err := f.fault(OpDelete, table); err != nil {
		return err
	}
	err := f.Gateway.Delete(ctx, table, id)
	if err == nil {
		f.wrote()
	}
	return err
}
