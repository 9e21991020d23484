package arena

// Tier labels by cumulative weekly points.
const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
	TierDiamond  = "Diamond"
)

// Point thresholds. A user sits in the highest tier whose threshold
// their weekly total meets.
const (
	silverThreshold   = 100
	goldThreshold     = 250
	platinumThreshold = 500
	diamondThreshold  = 1000
)

// TierFor returns the tier label for a weekly point total.
func TierFor(points int64) string {
	switch {
	case points >= diamondThreshold:
		return TierDiamond
	case points >= platinumThreshold:
		return TierPlatinum
	case points >= goldThreshold:
		return TierGold
	case points >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}
