// Package scoring holds the pure score arithmetic: outfit score
// validation, match outcome points, and the diminishing-returns weighting
// applied to war contributions.
package scoring

import "math"

// Outfit scores are 0-100 with one decimal.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Points awarded per match outcome on the weekly leaderboard.
const (
	WinPoints  = 10
	TiePoints  = 5
	LossPoints = 2
)

// Diminishing-returns schedule for war contributions. Scans 1-4 count in
// full; 5-9 decay geometrically; 10-14 are clamped to 20%; 15+ to 10%.
const (
	fullWeightScans = 4
	decayFactor     = 0.85
	softClampScans  = 10
	softClampWeight = 0.20
	hardClampScans  = 15
	hardClampWeight = 0.10
)

// ValidScore reports whether s is a finite outfit score within range.
func ValidScore(s float64) bool {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return false
	}
	return s >= MinScore && s <= MaxScore
}

// Round1 rounds a score to the one-decimal precision used everywhere.
func Round1(s float64) float64 {
	return math.Round(s*10) / 10
}

// OutcomePoints returns the leaderboard points a user earns from a
// resolved match. winner is the winning side's user id, or tie.
func OutcomePoints(winner, userID string) int64 {
	switch winner {
	case userID:
		return WinPoints
	case "tie":
		return TiePoints
	default:
		return LossPoints
	}
}

// DiminishedWeight returns the contribution multiplier for a user's nth
// scan of the day. The weight never increases with n.
func DiminishedWeight(scan int64) float64 {
	switch {
	case scan <= fullWeightScans:
		return 1.0
	case scan >= hardClampScans:
		return hardClampWeight
	case scan >= softClampScans:
		return softClampWeight
	default:
		return math.Pow(decayFactor, float64(scan-fullWeightScans))
	}
}

// Contribution returns the weighted war points for the nth scan of the
// day with the given raw outfit score.
func Contribution(rawScore float64, scan int64) float64 {
	return rawScore * DiminishedWeight(scan)
}
