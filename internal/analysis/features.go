package analysis

import (
	"github.com/yourusername/mister-predictor/internal/models"
)

// Neutral priors used when a team has no (or not enough) trailing history.
// Goal averages fall back to league-typical constants; rate features fall
// back to documented neutral values.
const (
	defaultHomeForm = 0.4
	defaultAwayForm = 0.3

	defaultHomeGoalsAvg    = 1.2
	defaultHomeConcededAvg = 1.0
	defaultAwayGoalsAvg    = 1.0
	defaultAwayConcededAvg = 1.3

	defaultOver15Rate     = 0.7
	defaultOver25Rate     = 0.5
	defaultOver35Rate     = 0.3
	defaultBTTSRate       = 0.5
	defaultCleanSheetRate = 0.3
	defaultOddGoalsRate   = 0.5
	defaultLateGoalRate   = 0.5
	defaultHTOver05Rate   = 0.7
	defaultHomeHTGoalsAvg = 0.6
	defaultAwayHTGoalsAvg = 0.5

	formWindow      = 5
	missingPosition = 10
)

// FeatureVector is the fixed-schema numeric snapshot derived from match
// history and standings for one upcoming match. It is built fresh per
// analysis pass and never persisted or mutated after construction.
type FeatureVector struct {
	MatchID int64

	HomeFormAvg float64
	AwayFormAvg float64
	PositionGap float64

	HomeGoalsAvg    float64
	HomeConcededAvg float64
	AwayGoalsAvg    float64
	AwayConcededAvg float64

	HomeHTGoalsAvg float64
	AwayHTGoalsAvg float64

	Over15HomeRate float64
	Over25HomeRate float64
	Over35HomeRate float64

	BTTSHomeRate       float64
	BTTSAwayRate       float64
	CleanSheetHomeRate float64
	CleanSheetAwayRate float64
	OddGoalsRate       float64
	LateGoalHomeRate   float64
	HTOver05Rate       float64
}

// BuildFeatures derives the feature vector for a match. homeHistory holds the
// home team's most recent finished home-venue matches (newest last),
// awayHistory the away team's finished away-venue matches. Both are narrowed
// to the trailing five. Pure function of its inputs.
func BuildFeatures(match *models.Match, homeHistory, awayHistory []*models.Match, standings []*models.StandingSnapshot) FeatureVector {
	home := lastN(finishedOnly(homeHistory), formWindow)
	away := lastN(finishedOnly(awayHistory), formWindow)

	fv := FeatureVector{
		MatchID:     match.ID,
		PositionGap: float64(standingPosition(standings, match.AwayTeamID) - standingPosition(standings, match.HomeTeamID)),
	}

	fv.HomeFormAvg = rateOf(home, defaultHomeForm, func(m *models.Match) bool { return *m.HomeScore > *m.AwayScore })
	fv.AwayFormAvg = rateOf(away, defaultAwayForm, func(m *models.Match) bool { return *m.AwayScore > *m.HomeScore })

	fv.HomeGoalsAvg = avgOf(home, defaultHomeGoalsAvg, func(m *models.Match) float64 { return float64(*m.HomeScore) })
	fv.HomeConcededAvg = avgOf(home, defaultHomeConcededAvg, func(m *models.Match) float64 { return float64(*m.AwayScore) })
	fv.AwayGoalsAvg = avgOf(away, defaultAwayGoalsAvg, func(m *models.Match) float64 { return float64(*m.AwayScore) })
	fv.AwayConcededAvg = avgOf(away, defaultAwayConcededAvg, func(m *models.Match) float64 { return float64(*m.HomeScore) })

	fv.Over15HomeRate = rateOf(home, defaultOver15Rate, func(m *models.Match) bool { return m.TotalGoals() > 1 })
	fv.Over25HomeRate = rateOf(home, defaultOver25Rate, func(m *models.Match) bool { return m.TotalGoals() > 2 })
	fv.Over35HomeRate = rateOf(home, defaultOver35Rate, func(m *models.Match) bool { return m.TotalGoals() > 3 })

	fv.BTTSHomeRate = rateOf(home, defaultBTTSRate, bothScored)
	fv.BTTSAwayRate = rateOf(away, defaultBTTSRate, bothScored)
	fv.CleanSheetHomeRate = rateOf(home, defaultCleanSheetRate, func(m *models.Match) bool { return *m.AwayScore == 0 })
	fv.CleanSheetAwayRate = rateOf(away, defaultCleanSheetRate, func(m *models.Match) bool { return *m.HomeScore == 0 })
	fv.OddGoalsRate = rateOf(home, defaultOddGoalsRate, func(m *models.Match) bool { return m.TotalGoals()%2 == 1 })

	// Half-time derived features only consider matches with a recorded
	// half-time score.
	homeHT := withHalfTime(home)
	fv.HomeHTGoalsAvg = avgOf(homeHT, defaultHomeHTGoalsAvg, func(m *models.Match) float64 { return float64(*m.HomeHTScore) })
	fv.AwayHTGoalsAvg = avgOf(withHalfTime(away), defaultAwayHTGoalsAvg, func(m *models.Match) float64 { return float64(*m.AwayHTScore) })
	fv.HTOver05Rate = rateOf(homeHT, defaultHTOver05Rate, func(m *models.Match) bool { return *m.HomeHTScore+*m.AwayHTScore > 0 })
	fv.LateGoalHomeRate = rateOf(homeHT, defaultLateGoalRate, func(m *models.Match) bool { return m.SecondHalfGoals() >= 2 })

	return fv
}

func finishedOnly(history []*models.Match) []*models.Match {
	out := make([]*models.Match, 0, len(history))
	for _, m := range history {
		if m.IsFinished() {
			out = append(out, m)
		}
	}
	return out
}

func withHalfTime(history []*models.Match) []*models.Match {
	out := make([]*models.Match, 0, len(history))
	for _, m := range history {
		if m.HasHalfTimeScore() {
			out = append(out, m)
		}
	}
	return out
}

func lastN(history []*models.Match, n int) []*models.Match {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func rateOf(history []*models.Match, fallback float64, pred func(*models.Match) bool) float64 {
	if len(history) == 0 {
		return fallback
	}
	hits := 0
	for _, m := range history {
		if pred(m) {
			hits++
		}
	}
	return float64(hits) / float64(len(history))
}

func avgOf(history []*models.Match, fallback float64, val func(*models.Match) float64) float64 {
	if len(history) == 0 {
		return fallback
	}
	sum := 0.0
	for _, m := range history {
		sum += val(m)
	}
	return sum / float64(len(history))
}

func bothScored(m *models.Match) bool {
	return *m.HomeScore > 0 && *m.AwayScore > 0
}

func standingPosition(standings []*models.StandingSnapshot, teamID int64) int {
	for _, s := range standings {
		if s.TeamID == teamID {
			return s.Position
		}
	}
	return missingPosition
}
