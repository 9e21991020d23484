// Package war runs the alliance minigame: six fixed regional alliances,
// 14-day seasons, diminishing-returns contributions, and a rotating
// schedule of daily pairwise battles.
package war

import "time"

// The six fixed alliances.
const (
	Asia         = "asia"
	Europe       = "europe"
	NorthAmerica = "north_america"
	SouthAmerica = "south_america"
	Africa       = "africa"
	Oceania      = "oceania"
)

// allianceOrder fixes the index each alliance holds in the rotation
// table. Reordering this list would reshuffle the daily schedule.
var allianceOrder = []string{
	Asia, Europe, NorthAmerica, SouthAmerica, Africa, Oceania,
}

var allianceSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(allianceOrder))
	for _, a := range allianceOrder {
		set[a] = struct{}{}
	}
	return set
}()

// ValidAlliance reports whether id names one of the six alliances.
func ValidAlliance(id string) bool {
	_, ok := allianceSet[id]
	return ok
}

// Alliances returns the six alliance ids in rotation order. The caller
// must not mutate the returned slice.
func Alliances() []string {
	return allianceOrder
}

// Wars are 14-day seasons counted from a fixed epoch. The epoch is a
// Monday so war boundaries line up with ISO weeks.
var warEpoch = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

const warLength = 14 * 24 * time.Hour

// WarID returns the season index containing t.
func WarID(t time.Time) int64 {
	return int64(t.UTC().Sub(warEpoch) / warLength)
}

// warEnd returns the first instant after war warID.
func warEnd(warID int64) time.Time {
	return warEpoch.Add(time.Duration(warID+1) * warLength)
}
