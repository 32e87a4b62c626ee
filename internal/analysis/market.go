package analysis

import (
	"math"

	"github.com/yourusername/mister-predictor/internal/models"
)

const (
	marketBaseScore = 0.5

	shorteningBoostCap  = 0.3
	shorteningBoostRate = 0.1
	driftPenaltyCap     = 0.2
	driftPenaltyRate    = 0.08

	stabilityBonusCap     = 0.1
	stabilityBonusPerSnap = 0.02
)

// MarketConfidenceEngine scores how strongly observed odds drift agrees with
// the model's pick. Money moving onto a selection shortens its price; a
// shortening price on our pick reads as market agreement.
type MarketConfidenceEngine struct{}

// GetScore returns a confidence score in [0.1, 1.0] for a bet type given the
// chronological odds history of the match. Fewer than two snapshots yields
// the neutral 0.5. Only the 1x2 win picks react to drift; every bet type
// earns a small stability bonus for a well-observed market.
func (e MarketConfidenceEngine) GetScore(betType string, history []*models.OddsSnapshot) float64 {
	if len(history) < 2 {
		return marketBaseScore
	}

	first, latest := history[0], history[len(history)-1]
	score := marketBaseScore

	switch betType {
	case BetHomeWin:
		score += driftAdjustment(first.HomeOdds, latest.HomeOdds)
	case BetAwayWin:
		score += driftAdjustment(first.AwayOdds, latest.AwayOdds)
	}

	score += math.Min(stabilityBonusCap, float64(len(history))*stabilityBonusPerSnap)

	return round3(clamp(score, confidenceFloor, confidenceCeil))
}

func driftAdjustment(first, latest *float64) float64 {
	if first == nil || latest == nil {
		return 0
	}
	drift := *latest - *first
	switch {
	case drift < 0:
		return math.Min(shorteningBoostCap, math.Abs(drift)*shorteningBoostRate)
	case drift > 0:
		return -math.Min(driftPenaltyCap, math.Abs(drift)*driftPenaltyRate)
	default:
		return 0
	}
}
