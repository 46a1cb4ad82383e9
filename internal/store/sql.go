package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/dbx"
	"github.com/dmitrijs2005/fieldlog/internal/timex"
	"github.com/google/uuid"
)

// Dialect selects placeholder syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// SQLGateway implements Gateway over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLGateway struct {
	db      dbx.DBTX
	dialect Dialect
	newID   func() string
}

// NewSQLGateway constructs a gateway bound to db.
func NewSQLGateway(db dbx.DBTX, dialect Dialect) *SQLGateway {
	return &SQLGateway{db: db, dialect: dialect, newID: uuid.NewString}
}

type argList struct {
	d    Dialect
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, toDBValue(v))
	return a.d.placeholder(len(a.args))
}

// toDBValue normalizes Go values into what both drivers store in the
// TEXT/INTEGER columns of the schema.
func toDBValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return timex.FormatTimestamp(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(x)
	default:
		return v
	}
}

func (g *SQLGateway) Query(ctx context.Context, table string, filter Filter, order Order) ([]Row, error) {
	if err := checkIdent("table", table); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	args := &argList{d: g.dialect}
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)

	var where []string
	for _, c := range filter {
		if err := checkIdent("column", c.Column); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
		}
		switch len(c.Values) {
		case 0:
			// IN () matches nothing.
			return nil, nil
		case 1:
			where = append(where, c.Column+" = "+args.add(c.Values[0]))
		default:
			ph := make([]string, 0, len(c.Values))
			for _, v := range c.Values {
				ph = append(ph, args.add(v))
			}
			where = append(where, c.Column+" IN ("+strings.Join(ph, ", ")+")")
		}
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if len(order.By) > 0 {
		terms := make([]string, 0, len(order.By))
		for _, s := range order.By {
			if err := checkIdent("column", s.Column); err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
			}
			if s.Desc {
				terms = append(terms, s.Column+" DESC")
			} else {
				terms = append(terms, s.Column+" ASC")
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}
	if order.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(order.Limit))
	}

	rows, err := g.db.QueryContext(ctx, sb.String(), args.args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %w", common.ErrStore, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns %s: %w", common.ErrStore, table, err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", common.ErrStore, table, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", common.ErrStore, table, err)
	}
	return result, nil
}

func sortedColumns(r Row) []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func (g *SQLGateway) Insert(ctx context.Context, table string, record Row) (Row, error) {
	if err := checkIdent("table", table); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	out := record.Clone()
	if out.String("id") == "" {
		out["id"] = g.newID()
	}

	cols := sortedColumns(out)
	args := &argList{d: g.dialect}
	ph := make([]string, 0, len(cols))
	for _, c := range cols {
		if err := checkIdent("column", c); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
		}
		ph = append(ph, args.add(out[c]))
	}

	query := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")"
	if _, err := g.db.ExecContext(ctx, query, args.args...); err != nil {
		return nil, fmt.Errorf("%w: insert %s: %w", common.ErrStore, table, err)
	}
	return out, nil
}

func (g *SQLGateway) Update(ctx context.Context, table string, id string, patch Row) error {
	if err := checkIdent("table", table); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}
	if len(patch) == 0 {
		return nil
	}

	args := &argList{d: g.dialect}
	var sets []string
	for _, c := range sortedColumns(patch) {
		if c == "id" {
			continue
		}
		if err := checkIdent("column", c); err != nil {
			return fmt.Errorf("%w: %w", common.ErrStore, err)
		}
		sets = append(sets, c+" = "+args.add(patch[c]))
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = " + args.add(id)
	res, err := g.db.ExecContext(ctx, query, args.args...)
	if err != nil {
		return fmt.Errorf("%w: update %s: %w", common.ErrStore, table, err)
	}
	return expectOneRow(res, table, id)
}

func (g *SQLGateway) Delete(ctx context.Context, table string, id string) error {
	if err := checkIdent("table", table); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	res, err := g.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = "+g.dialect.placeholder(1), id)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", common.ErrStore, table, err)
	}
	return expectOneRow(res, table, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res rowsAffecter, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected %s: %w", common.ErrStore, table, err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s %s: %w", table, id, common.ErrorNotFound)
	default:
		return fmt.Errorf("%w: unexpected rows affected on %s: %d", common.ErrStore, table, n)
	}
}
