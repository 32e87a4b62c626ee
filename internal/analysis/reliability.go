package analysis

import (
	"math"

	"github.com/yourusername/mister-predictor/internal/models"
)

const (
	reliabilityFullSample = 20
	neutralWinRate        = 0.5

	confidenceFloor = 0.1
	confidenceCeil  = 1.0
)

// ReliabilityTracker scales a candidate's confidence by the learned win
// rates of the patterns backing it. Stats are persisted aggregates updated
// by the settlement flow; this type only reads them.
type ReliabilityTracker struct{}

// AdjustConfidence returns the base confidence scaled by the sample-weighted
// average win rate of the supplied pattern stats. Each stat's weight grows
// with its sample size, saturating at twenty occurrences. With no stats the
// base is returned unchanged; the result is clamped to [0.1, 1.0].
func (t ReliabilityTracker) AdjustConfidence(base float64, stats []*models.PatternStat) float64 {
	if len(stats) == 0 {
		return base
	}

	weightedSum, totalWeight := 0.0, 0.0
	for _, s := range stats {
		w := math.Min(float64(s.Occurrences)/reliabilityFullSample, 1.0)
		weightedSum += s.WinRate() * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return base
	}

	multiplier := (weightedSum / totalWeight) / neutralWinRate
	return clamp(base*multiplier, confidenceFloor, confidenceCeil)
}

// CalculatePatternReliability returns the empirical win rate, or the neutral
// prior when the pattern has never been observed
func (t ReliabilityTracker) CalculatePatternReliability(wins, total int) float64 {
	if total == 0 {
		return neutralWinRate
	}
	return float64(wins) / float64(total)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
