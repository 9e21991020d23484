package battle

import (
	"hash/fnv"
	"math"

	"github.com/fitrate/arena/internal/domain/model"
)

// Verdict lines grouped by winning margin. The line is picked
// deterministically from the battle id so both pollers read the same one.

var tieVerdicts = []string{
	"Dead even. The judges are sweating.",
	"Not a thread between them. It's a tie.",
	"Two fits, one score. Run it back.",
}

var narrowVerdicts = []string{
	"Won by a shoelace.",
	"Photo finish, but the crown moves.",
	"Barely. But barely counts.",
}

var clearVerdicts = []string{
	"A clean win, no debate.",
	"The fit spoke for itself.",
	"Comfortable margin, comfortable fit.",
}

var blowoutVerdicts = []string{
	"Total wipeout. Someone call a stylist.",
	"This wasn't a battle, it was a lesson.",
	"A masterclass against a rough draft.",
}

const (
	narrowMargin = 5.0
	clearMargin  = 20.0
)

func verdictFor(record model.MatchRecord) string {
	margin := math.Abs(record.Challenger.Score - record.Opponent.Score)
	pool := poolForMargin(margin)
	h := fnv.New32a()
	_, _ = h.Write([]byte(record.BattleID))
	return pool[h.Sum32()%uint32(len(pool))]
}

func poolForMargin(margin float64) []string {
	switch {
	case margin == 0:
		return tieVerdicts
	case margin < narrowMargin:
		return narrowVerdicts
	case margin < clearMargin:
		return clearVerdicts
	default:
		return blowoutVerdicts
	}
}
