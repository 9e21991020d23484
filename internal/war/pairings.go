package war

import "time"

// rotation is the five-round circle-method schedule for six teams:
// index 5 stays fixed while 0..4 rotate, so every pair of alliances
// meets exactly once per cycle.
var rotation = [5][3][2]int{
	{{0, 5}, {1, 4}, {2, 3}},
	{{1, 5}, {2, 0}, {3, 4}},
	{{2, 5}, {3, 1}, {4, 0}},
	{{3, 5}, {4, 2}, {0, 1}},
	{{4, 5}, {0, 3}, {1, 2}},
}

// roundFor maps a calendar day to its rotation round.
func roundFor(t time.Time) int {
	return t.UTC().YearDay() % len(rotation)
}

// pairingsFor returns the three alliance pairs battling on day t.
func pairingsFor(t time.Time) [3][2]string {
	var out [3][2]string
	for i, pair := range rotation[roundFor(t)] {
		out[i][0] = allianceOrder[pair[0]]
		out[i][1] = allianceOrder[pair[1]]
	}
	return out
}
