package analysis

import (
	"math"
)

// Default fractional-Kelly parameters
const (
	DefaultKellyFraction = 0.1
	DefaultMaxStakePct   = 0.05

	streakWindow    = 3
	coldStreakScale = 0.5
	hotStreakScale  = 1.2
)

// StakeEngine sizes bets with fractional Kelly under a hard bankroll cap
type StakeEngine struct {
	KellyFraction float64
	MaxStakePct   float64
}

// NewStakeEngine returns a stake engine, substituting defaults for
// non-positive parameters
func NewStakeEngine(kellyFraction, maxStakePct float64) StakeEngine {
	if kellyFraction <= 0 {
		kellyFraction = DefaultKellyFraction
	}
	if maxStakePct <= 0 {
		maxStakePct = DefaultMaxStakePct
	}
	return StakeEngine{KellyFraction: kellyFraction, MaxStakePct: maxStakePct}
}

// CalculateKellyStake returns the recommended stake for a bet at the given
// decimal odds and model probability. Zero whenever the model sees no edge
// (prob at or below the implied probability) or the price is unbackable.
// The Kelly fraction is damped and the result capped at MaxStakePct of
// bankroll, rounded to two decimals.
func (e StakeEngine) CalculateKellyStake(bankroll, odds, prob float64) float64 {
	if prob <= 0 || odds <= 1 {
		return 0
	}
	if prob <= 1/odds {
		return 0
	}

	b := odds - 1
	kelly := (b*prob - (1 - prob)) / b

	stake := bankroll * kelly * e.KellyFraction
	stake = math.Min(stake, bankroll*e.MaxStakePct)

	return math.Max(0, round2(stake))
}

// AdjustForStreak scales a stake by the run of recent results: three straight
// losses halve it, three straight wins lift it twenty percent, anything else
// leaves it unchanged. Fewer than three results is no signal.
func (e StakeEngine) AdjustForStreak(stake float64, recentResults []bool) float64 {
	if len(recentResults) < streakWindow {
		return stake
	}

	last := recentResults[len(recentResults)-streakWindow:]
	wins := 0
	for _, won := range last {
		if won {
			wins++
		}
	}

	switch wins {
	case 0:
		return round2(stake * coldStreakScale)
	case streakWindow:
		return round2(stake * hotStreakScale)
	default:
		return stake
	}
}
