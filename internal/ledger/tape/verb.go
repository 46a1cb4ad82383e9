package tape

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/models"
)

var verbs = map[string]models.TapeEventType{
	"start":       models.TapeStart,
	"begin":       models.TapeStart,
	"record":      models.TapeStart,
	"task_start":  models.TapeStart,
	"pause":       models.TapePause,
	"hold":        models.TapePause,
	"resume":      models.TapeResume,
	"continue":    models.TapeResume,
	"unpause":     models.TapeResume,
	"task_resume": models.TapeResume,
	"stop":        models.TapeStop,
	"end":         models.TapeStop,
	"finish":      models.TapeStop,
	"pre_mark":    models.TapePreMark,
	"pre-mark":    models.TapePreMark,
	"premark":     models.TapePreMark,
	"mark":        models.TapePreMark,
}

// ParseVerb maps a caller verb to its canonical event type. Matching is
// case-insensitive.
func ParseVerb(verb string) (models.TapeEventType, error) {
	t, ok := verbs[strings.ToLower(strings.TrimSpace(verb))]
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownVerb, verb)
	}
	return t, nil
}
