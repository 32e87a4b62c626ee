package analysis

import (
	"math"
)

// Outcome keys of the probability report. Outcomes partitioning the same
// event space (1x2, btts, parity) sum to 1 within rounding tolerance.
const (
	OutcomeHome = "home"
	OutcomeDraw = "draw"
	OutcomeAway = "away"

	OutcomeOver05 = "over_05"
	OutcomeOver15 = "over_15"
	OutcomeOver25 = "over_25"
	OutcomeOver35 = "over_35"

	OutcomeBTTSYes        = "btts_yes"
	OutcomeBTTSNo         = "btts_no"
	OutcomeCleanSheetHome = "clean_sheet_home"
	OutcomeCleanSheetAway = "clean_sheet_away"
	OutcomeOddGoals       = "odd_goals"
	OutcomeEvenGoals      = "even_goals"

	OutcomeHTHome   = "ht_home"
	OutcomeHTDraw   = "ht_draw"
	OutcomeHTAway   = "ht_away"
	OutcomeHTOver05 = "ht_over_05"
	OutcomeHTOver15 = "ht_over_15"

	OutcomeLateGoal = "late_goal"
)

// League scoring baselines and model constants
const (
	homeGoalBaseline = 1.45
	awayGoalBaseline = 1.15

	formHomeNeutral = 0.4
	formAwayNeutral = 0.3
	formHomeWeight  = 0.3
	formAwayWeight  = 0.2

	positionGapWeight = 0.02
	gapToXGScale      = 0.1

	xgFloor = 0.3

	maxGoals   = 7
	htMaxGoals = 5
	htXGScale  = 0.42

	secondHalfShare = 0.58
	lateGoalHazard  = 0.4
)

// ProbabilityReport is the full multi-market probability view of one match,
// keyed by outcome, plus the expected-goals values it was derived from.
type ProbabilityReport struct {
	Outcomes map[string]float64
	HomeXG   float64
	AwayXG   float64
}

// Get returns the probability for an outcome key, or 0 when absent
func (r ProbabilityReport) Get(key string) float64 {
	return r.Outcomes[key]
}

// CalculateProbabilities converts a feature vector into a probability report
// via an independent-Poisson scoreline grid. Attack and defense strengths are
// the team scoring/conceding averages normalized against the league
// baselines; expected goals are then adjusted by form and position gap and
// floored so the grid never degenerates.
func CalculateProbabilities(fv FeatureVector) ProbabilityReport {
	homeAttack := fv.HomeGoalsAvg / homeGoalBaseline
	homeDefense := fv.HomeConcededAvg / awayGoalBaseline
	awayAttack := fv.AwayGoalsAvg / awayGoalBaseline
	awayDefense := fv.AwayConcededAvg / homeGoalBaseline

	homeXG := homeAttack * awayDefense * homeGoalBaseline
	awayXG := awayAttack * homeDefense * awayGoalBaseline

	formDiff := (fv.HomeFormAvg-formHomeNeutral)*formHomeWeight - (fv.AwayFormAvg-formAwayNeutral)*formAwayWeight
	adjustment := formDiff + fv.PositionGap*positionGapWeight*gapToXGScale

	homeXG = math.Max(xgFloor, homeXG+adjustment)
	awayXG = math.Max(xgFloor, awayXG-adjustment)

	grid := buildScorelineGrid(homeXG, awayXG, maxGoals)
	outcomes := make(map[string]float64, 20)

	homeWin, draw, awayWin := 0.0, 0.0, 0.0
	oddMass := 0.0
	homeBlank, awayBlank := 0.0, 0.0
	underMass := make([]float64, maxGoals*2+1) // cumulative P(total <= k)
	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			p := grid[h][a]
			switch {
			case h > a:
				homeWin += p
			case h < a:
				awayWin += p
			default:
				draw += p
			}
			if (h+a)%2 == 1 {
				oddMass += p
			}
			if h == 0 {
				homeBlank += p
			}
			if a == 0 {
				awayBlank += p
			}
			for k := h + a; k <= maxGoals*2; k++ {
				underMass[k] += p
			}
		}
	}

	outcomes[OutcomeHome] = round4(homeWin)
	outcomes[OutcomeDraw] = round4(draw)
	outcomes[OutcomeAway] = round4(awayWin)

	outcomes[OutcomeOver05] = round4(1 - underMass[0])
	outcomes[OutcomeOver15] = round4(1 - underMass[1])
	outcomes[OutcomeOver25] = round4(1 - underMass[2])
	outcomes[OutcomeOver35] = round4(1 - underMass[3])

	bttsYes := 1 - homeBlank - awayBlank + grid[0][0]
	outcomes[OutcomeBTTSYes] = round4(bttsYes)
	outcomes[OutcomeBTTSNo] = round4(1 - bttsYes)
	outcomes[OutcomeCleanSheetHome] = round4(awayBlank)
	outcomes[OutcomeCleanSheetAway] = round4(homeBlank)
	outcomes[OutcomeOddGoals] = round4(oddMass)
	outcomes[OutcomeEvenGoals] = round4(1 - oddMass)

	// Half-time view: same grid model on scaled expected goals.
	htHomeXG := homeXG * htXGScale
	htAwayXG := awayXG * htXGScale
	htGrid := buildScorelineGrid(htHomeXG, htAwayXG, htMaxGoals)
	htHome, htDraw, htAway := 0.0, 0.0, 0.0
	htNoGoal, htUnder15 := 0.0, 0.0
	for h := 0; h <= htMaxGoals; h++ {
		for a := 0; a <= htMaxGoals; a++ {
			p := htGrid[h][a]
			switch {
			case h > a:
				htHome += p
			case h < a:
				htAway += p
			default:
				htDraw += p
			}
			if h+a == 0 {
				htNoGoal += p
			}
			if h+a <= 1 {
				htUnder15 += p
			}
		}
	}
	outcomes[OutcomeHTHome] = round4(htHome)
	outcomes[OutcomeHTDraw] = round4(htDraw)
	outcomes[OutcomeHTAway] = round4(htAway)
	outcomes[OutcomeHTOver05] = round4(1 - htNoGoal)
	outcomes[OutcomeHTOver15] = round4(1 - htUnder15)

	// Late-goal proxy: probability of two or more second-half goals from an
	// exponential hazard on the second-half expected-goal share. Not derived
	// from the grid.
	secondHalfXG := secondHalfShare * (homeXG + awayXG)
	outcomes[OutcomeLateGoal] = round4(1 - math.Exp(-secondHalfXG*lateGoalHazard))

	return ProbabilityReport{
		Outcomes: outcomes,
		HomeXG:   round2(homeXG),
		AwayXG:   round2(awayXG),
	}
}

// buildScorelineGrid returns P(h,a) for goals 0..max per side under
// independent Poisson scoring, normalized by the grid's total mass
func buildScorelineGrid(homeXG, awayXG float64, max int) [][]float64 {
	grid := make([][]float64, max+1)
	total := 0.0
	for h := 0; h <= max; h++ {
		grid[h] = make([]float64, max+1)
		for a := 0; a <= max; a++ {
			p := poissonPMF(homeXG, h) * poissonPMF(awayXG, a)
			grid[h][a] = p
			total += p
		}
	}
	if total > 0 {
		for h := 0; h <= max; h++ {
			for a := 0; a <= max; a++ {
				grid[h][a] /= total
			}
		}
	}
	return grid
}

func poissonPMF(lambda float64, k int) float64 {
	return math.Exp(-lambda) * math.Pow(lambda, float64(k)) / factorial(k)
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
