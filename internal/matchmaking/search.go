package matchmaking

import (
	"time"

	"github.com/fitrate/arena/internal/domain/modes"
)

// The search widens on two independent schedules: which queues are
// scanned, and how far apart scores may be.
const (
	ownModeWindow   = 20 * time.Second
	modeGroupWindow = 40 * time.Second

	narrowWindow = 30 * time.Second
	midWindow    = 60 * time.Second

	narrowTolerance = 20.0
	midTolerance    = 50.0
	wideTolerance   = 100.0
)

// searchPlan returns the queues to scan, nearest first, and the score
// tolerance for a user who has waited this long. Both only ever widen
// as wait grows, so a candidate acceptable at one poll stays acceptable
// at the next.
func searchPlan(mode string, wait time.Duration) ([]string, float64) {
	var scan []string
	switch {
	case wait <= ownModeWindow:
		scan = []string{mode}
	case wait <= modeGroupWindow:
		scan = ownModeFirst(modes.Group(mode), mode)
	default:
		scan = ownModeFirst(modes.All(), mode)
	}

	var tolerance float64
	switch {
	case wait <= narrowWindow:
		tolerance = narrowTolerance
	case wait <= midWindow:
		tolerance = midTolerance
	default:
		tolerance = wideTolerance
	}
	return scan, tolerance
}

// ownModeFirst copies list with mode moved to the front. The scan must
// visit the searcher's own queue before any sibling queue.
func ownModeFirst(list []string, mode string) []string {
	out := make([]string, 0, len(list))
	out = append(out, mode)
	for _, m := range list {
		if m != mode {
			out = append(out, m)
		}
	}
	return out
}

// searchScope names the queue scope scanned at this wait, for waiting
// poll responses.
func searchScope(wait time.Duration) string {
	switch {
	case wait <= ownModeWindow:
		return "mode"
	case wait <= modeGroupWindow:
		return "group"
	default:
		return "all"
	}
}
