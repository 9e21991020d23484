// Package modes defines the scoring personas users queue under and the
// affinity groups matchmaking widens across.
package modes

// Mode tags. Each belongs to exactly one group.
const (
	Nice       = "nice"
	Honest     = "honest"
	Aura       = "aura"
	Roast      = "roast"
	Savage     = "savage"
	Chaos      = "chaos"
	Drip       = "drip"
	Streetwear = "streetwear"
	Y2K        = "y2k"
	Rizz       = "rizz"
	Date       = "date"
	Celebrity  = "celebrity"
)

// groupTable maps a group name to its member modes. Group membership
// drives the mid-stage widening of the matchmaking search.
var groupTable = map[string][]string{
	"gentle": {Nice, Honest, Aura},
	"spicy":  {Roast, Savage, Chaos},
	"style":  {Drip, Streetwear, Y2K},
	"social": {Rizz, Date, Celebrity},
}

// groupByMode is the reverse index of groupTable.
var groupByMode = func() map[string]string {
	idx := make(map[string]string, 12)
	for group, members := range groupTable {
		for _, m := range members {
			idx[m] = group
		}
	}
	return idx
}()

// all lists every mode in a stable order (group by group).
var all = []string{
	Nice, Honest, Aura,
	Roast, Savage, Chaos,
	Drip, Streetwear, Y2K,
	Rizz, Date, Celebrity,
}

// Valid reports whether mode is a known tag.
func Valid(mode string) bool {
	_, ok := groupByMode[mode]
	return ok
}

// All returns every mode in a stable order. The caller must not mutate
// the returned slice.
func All() []string {
	return all
}

// Group returns the modes sharing a group with mode, including mode
// itself, or nil for an unknown mode. The caller must not mutate the
// returned slice.
func Group(mode string) []string {
	name, ok := groupByMode[mode]
	if !ok {
		return nil
	}
	return groupTable[name]
}

// GroupName returns the group a mode belongs to, or "" for an unknown mode.
func GroupName(mode string) string {
	return groupByMode[mode]
}
