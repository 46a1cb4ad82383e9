package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/timex"
)

// String returns the column as text; nil becomes "".
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return timex.FormatTimestamp(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer; unparsable values become 0.
func (r Row) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string, []byte:
		n, err := strconv.ParseInt(r.String(key), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool treats non-zero integers and "true"/"1" as true.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return r.Int64(key) != 0
	}
}

// Time parses the column defensively; unparsable values become now.
func (r Row) Time(key string, now time.Time) time.Time {
	t, _ := timex.ParseAny(r[key], now)
	return t
}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
