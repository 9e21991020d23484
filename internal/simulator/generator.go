package simulator

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/fitrate/arena/internal/domain/modes"
	"github.com/fitrate/arena/internal/war"
	"github.com/fitrate/arena/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	scoreShapeDivisor  = 8
	thumbnailOdds      = 3 // roughly one in three joins carries a thumbnail
)

// Constants for score generation ranges.
const (
	avgScorerMin   = 40.0
	avgScorerRange = 30.0
	highScorerMin  = 70.0
	highScorerSpan = 20.0
	lowScorerMin   = 5.0
	lowScorerSpan  = 30.0
	eliteMin       = 90.0
	eliteSpan      = 10.0
	veryLowMin     = 1.0
	veryLowSpan    = 9.0
	midHighMin     = 60.0
	midHighSpan    = 15.0
	midLowMin      = 25.0
	midLowSpan     = 20.0
	wideMin        = 1.0
	wideSpan       = 99.0
)

// Constants for score shape cases.
const (
	caseAverageScorer = 0
	caseHighScorer    = 1
	caseLowScorer     = 2
	caseEliteScorer   = 3
	caseVeryLowScorer = 4
	caseMidHighScorer = 5
	caseMidLowScorer  = 6
	caseWideRange     = 7
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pick returns a random element of options using crypto/rand.
func pick(options []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(options))))
	return options[n.Int64()]
}

// generatePersonas creates the simulated user population.
func generatePersonas(ctx context.Context, config *Config, stats *Stats) []Persona {
	logger.Get().Info(ctx, "generating simulated users", logger.Int("numUsers", config.NumUsers))

	allModes := modes.All()
	alliances := war.Alliances()

	personas := make([]Persona, config.NumUsers)
	for i := range personas {
		p := Persona{
			UserID:     "sim-" + uuid.New().String(),
			Score:      generateVariedScore(),
			Mode:       pick(allModes),
			AllianceID: pick(alliances),
		}
		if n, _ := rand.Int(rand.Reader, big.NewInt(thumbnailOdds)); n.Int64() == 0 {
			p.Thumbnail = "sim-thumb-" + strconv.Itoa(i)
		}
		personas[i] = p
	}

	stats.UsersGenerated = len(personas)
	logger.Get().Info(ctx, "generated simulated users", logger.Int("count", len(personas)))
	return personas
}

// generateVariedScore creates an outfit score with a varied distribution
// so queues see realistic spread across the 0..100 range.
func generateVariedScore() float64 {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(scoreShapeDivisor))
	switch randNum.Int64() {
	case caseAverageScorer:
		// Average outfits (40 - 70) - most common
		return avgScorerMin + getRandomFloat()*avgScorerRange
	case caseHighScorer:
		// Strong outfits (70 - 90)
		return highScorerMin + getRandomFloat()*highScorerSpan
	case caseLowScorer:
		// Weak outfits (5 - 35)
		return lowScorerMin + getRandomFloat()*lowScorerSpan
	case caseEliteScorer:
		// Elite outfits (90 - 100) - rare
		return eliteMin + getRandomFloat()*eliteSpan
	case caseVeryLowScorer:
		// Disasters (1 - 10) - rare
		return veryLowMin + getRandomFloat()*veryLowSpan
	case caseMidHighScorer:
		// Mid-high outfits (60 - 75)
		return midHighMin + getRandomFloat()*midHighSpan
	case caseMidLowScorer:
		// Mid-low outfits (25 - 45)
		return midLowMin + getRandomFloat()*midLowSpan
	case caseWideRange:
		// Random across full range (1 - 100)
		return wideMin + getRandomFloat()*wideSpan
	default:
		return wideMin + getRandomFloat()*wideSpan
	}
}
