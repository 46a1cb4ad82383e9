package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
	"github.com/google/uuid"
)

type memRow struct {
	seq int64
	row Row
}

// MemoryGateway is an in-process Gateway used by tests and the offline
// client. It is safe for concurrent use.
type MemoryGateway struct {
	mu     sync.RWMutex
	tables map[string]map[string]memRow
	seq    int64
	newID  func() string
}

// NewMemoryGateway returns an empty gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		tables: make(map[string]map[string]memRow),
		newID:  uuid.NewString,
	}
}

func (m *MemoryGateway) Query(_ context.Context, table string, filter Filter, order Order) ([]Row, error) {
	if err := checkIdent("table", table); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []memRow
	for _, r := range m.tables[table] {
		if matches(r.row, filter) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, s := range order.By {
			c := compareValues(matched[i].row[s.Column], matched[j].row[s.Column])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return matched[i].seq < matched[j].seq
	})

	if order.Limit > 0 && len(matched) > order.Limit {
		matched = matched[:order.Limit]
	}

	out := make([]Row, 0, len(matched))
	for _, r := range matched {
		out = append(out, r.row.Clone())
	}
	return out, nil
}

func (m *MemoryGateway) Insert(_ context.Context, table string, record Row) (Row, error) {
	if err := checkIdent("table", table); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	out := normalizeRow(record)
	if out.String("id") == "" {
		out["id"] = m.newID()
	}
	id := out.String("id")

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		t = make(map[string]memRow)
		m.tables[table] = t
	}
	if _, exists := t[id]; exists {
		return nil, fmt.Errorf("%w: insert %s: duplicate id %s", common.ErrStore, table, id)
	}
	m.seq++
	t[id] = memRow{seq: m.seq, row: out}
	return out.Clone(), nil
}

func (m *MemoryGateway) Update(_ context.Context, table string, id string, patch Row) error {
	if err := checkIdent("table", table); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.tables[table][id]
	if !ok {
		return fmt.Errorf("%s %s: %w", table, id, common.ErrorNotFound)
	}
	for k, v := range normalizeRow(patch) {
		if k == "id" {
			continue
		}
		r.row[k] = v
	}
	m.tables[table][id] = r
	return nil
}

func (m *MemoryGateway) Delete(_ context.Context, table string, id string) error {
	if err := checkIdent("table", table); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table][id]; !ok {
		return fmt.Errorf("%s %s: %w", table, id, common.ErrorNotFound)
	}
	delete(m.tables[table], id)
	return nil
}

// normalizeRow stores values the same way SQLGateway does so that rows read
// back from either implementation look alike.
func normalizeRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = toDBValue(v)
	}
	return out
}

func matches(r Row, f Filter) bool {
	for _, c := range f {
		hit := false
		for _, v := range c.Values {
			if compareValues(r[c.Column], toDBValue(v)) == 0 {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// compareValues orders nil first, then numbers numerically, then text.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	af, aNum := asNumber(a)
	bf, bNum := asNumber(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, bs := asText(a), asText(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func asText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return timex.FormatTimestamp(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
