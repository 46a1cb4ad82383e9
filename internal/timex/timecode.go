package timex

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimecode renders counter seconds as HH:MM:SS. Hours are not wrapped
// at 24; negative input is clamped to zero.
func FormatTimecode(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseTimecode parses HH:MM:SS (or MM:SS) into counter seconds.
func ParseTimecode(tc string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode %q", tc)
	}
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}

	var total int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timecode %q", tc)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid timecode %q", tc)
		}
		total = total*60 + n
	}
	return total, nil
}
