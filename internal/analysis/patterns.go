package analysis

import (
	"github.com/yourusername/mister-predictor/internal/models"
)

// Pattern is a named heuristic detected from trailing match windows.
// Markets restricts which bet types the pattern endorses; a nil set means
// the pattern applies to every bet type in the match.
type Pattern struct {
	Name        string
	Strength    float64
	Description string
	Markets     []string
}

// AppliesTo reports whether the pattern endorses a bet type
func (p Pattern) AppliesTo(betType string) bool {
	if len(p.Markets) == 0 {
		return true
	}
	for _, m := range p.Markets {
		if m == betType {
			return true
		}
	}
	return false
}

// Pattern names
const (
	PatternHomeColdStreak      = "HOME_COLD_STREAK"
	PatternHomeFortress        = "HOME_FORTRESS"
	PatternHighScoringHome     = "HIGH_SCORING_HOME"
	PatternLowScoringHome      = "LOW_SCORING_HOME"
	PatternBTTSHomeTrend       = "BTTS_HOME_TREND"
	PatternHomeCleanSheets     = "HOME_CLEAN_SHEET_MACHINE"
	PatternHomeFastStarter     = "HOME_FAST_STARTER"
	PatternFirstHalfGoals      = "FIRST_HALF_GOALS"
	PatternLateSurge           = "LATE_SURGE"
	PatternAwayWeakness        = "AWAY_WEAKNESS"
	PatternAwayLeakyDefense    = "AWAY_LEAKY_DEFENSE"
	PatternAwayCleanSheets     = "AWAY_CLEAN_SHEET_MACHINE"
	PatternBTTSAwayTrend       = "BTTS_AWAY_TREND"
	PatternClassGap            = "CLASS_GAP"
	PatternGiantKillerScenario = "GIANT_KILLER_SCENARIO"
)

const (
	patternMinHistory   = 3
	patternMinHTHistory = 3
	classGapThreshold   = 8
)

// DetectPatterns evaluates the heuristic catalogue over the trailing five
// finished matches per side. History-based detection requires at least three
// matches for the side in question; half-time-dependent patterns additionally
// require three matches with recorded half-time scores. Standings-based
// patterns need no history at all.
func DetectPatterns(homeHistory, awayHistory []*models.Match, fv FeatureVector) []Pattern {
	var patterns []Pattern

	home := lastN(finishedOnly(homeHistory), formWindow)
	away := lastN(finishedOnly(awayHistory), formWindow)

	if len(home) >= patternMinHistory {
		patterns = append(patterns, detectHomePatterns(home)...)
	}
	if len(away) >= patternMinHistory {
		patterns = append(patterns, detectAwayPatterns(away)...)
	}

	if fv.PositionGap >= classGapThreshold {
		patterns = append(patterns, Pattern{
			Name:        PatternClassGap,
			Strength:    0.75,
			Description: "Significant class gap favouring the home side",
		})
	}
	if fv.PositionGap <= -classGapThreshold {
		patterns = append(patterns, Pattern{
			Name:        PatternGiantKillerScenario,
			Strength:    0.50,
			Description: "Home side is a heavy underdog with upset potential",
		})
	}

	return patterns
}

func detectHomePatterns(home []*models.Match) []Pattern {
	var patterns []Pattern

	last3 := lastN(home, 3)
	if len(last3) >= 3 && countMatches(last3, func(m *models.Match) bool { return *m.HomeScore < *m.AwayScore }) >= 3 {
		patterns = append(patterns, Pattern{
			Name:        PatternHomeColdStreak,
			Strength:    0.70,
			Description: "Home side has lost its last three home matches",
			Markets:     []string{BetAwayWin, BetDraw},
		})
	}
	if countMatches(home, func(m *models.Match) bool { return *m.HomeScore > *m.AwayScore }) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternHomeFortress,
			Strength:    0.80,
			Description: "Home side wins nearly every home match",
			Markets:     []string{BetHomeWin, BetHTHome},
		})
	}
	if countMatches(home, func(m *models.Match) bool { return m.TotalGoals() > 2 }) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternHighScoringHome,
			Strength:    0.65,
			Description: "Home fixtures consistently produce three or more goals",
			Markets:     []string{BetOver25, BetOver15, BetBTTSYes},
		})
	}
	if countMatches(home, func(m *models.Match) bool { return m.TotalGoals() <= 2 }) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternLowScoringHome,
			Strength:    0.65,
			Description: "Home fixtures consistently stay under three goals",
			Markets:     []string{BetUnder25, BetUnder35, BetBTTSNo},
		})
	}
	if countMatches(home, bothScored) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternBTTSHomeTrend,
			Strength:    0.70,
			Description: "Both teams score in most home fixtures",
			Markets:     []string{BetBTTSYes, BetOver15},
		})
	}
	if countMatches(home, func(m *models.Match) bool { return *m.AwayScore == 0 }) >= 3 {
		patterns = append(patterns, Pattern{
			Name:        PatternHomeCleanSheets,
			Strength:    0.75,
			Description: "Home side keeps clean sheets at home",
			Markets:     []string{BetCleanSheetHome, BetHomeWin},
		})
	}

	homeHT := withHalfTime(home)
	if len(homeHT) >= patternMinHTHistory {
		if countMatches(homeHT, func(m *models.Match) bool { return *m.HomeHTScore > *m.AwayHTScore }) >= 3 {
			patterns = append(patterns, Pattern{
				Name:        PatternHomeFastStarter,
				Strength:    0.70,
				Description: "Home side is usually ahead at half time",
				Markets:     []string{BetHTHome, BetHTOver05},
			})
		}
		if countMatches(homeHT, func(m *models.Match) bool { return *m.HomeHTScore+*m.AwayHTScore > 0 }) >= 4 {
			patterns = append(patterns, Pattern{
				Name:        PatternFirstHalfGoals,
				Strength:    0.65,
				Description: "First halves at this venue rarely stay goalless",
				Markets:     []string{BetHTOver05},
			})
		}
		if countMatches(homeHT, func(m *models.Match) bool { return m.SecondHalfGoals() >= 2 }) >= 3 {
			patterns = append(patterns, Pattern{
				Name:        PatternLateSurge,
				Strength:    0.60,
				Description: "Second halves at this venue produce multiple goals",
				Markets:     []string{BetLateGoal, BetOver25},
			})
		}
	}

	return patterns
}

func detectAwayPatterns(away []*models.Match) []Pattern {
	var patterns []Pattern

	if countMatches(away, func(m *models.Match) bool { return *m.AwayScore < *m.HomeScore }) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternAwayWeakness,
			Strength:    0.70,
			Description: "Away side loses most of its travels",
			Markets:     []string{BetHomeWin},
		})
	}
	if countMatches(away, func(m *models.Match) bool { return *m.HomeScore > 0 }) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternAwayLeakyDefense,
			Strength:    0.60,
			Description: "Away side concedes in almost every away match",
			Markets:     []string{BetHomeWin, BetOver15, BetBTTSYes},
		})
	}
	if countMatches(away, func(m *models.Match) bool { return *m.HomeScore == 0 }) >= 3 {
		patterns = append(patterns, Pattern{
			Name:        PatternAwayCleanSheets,
			Strength:    0.70,
			Description: "Away side shuts out its hosts on the road",
			Markets:     []string{BetCleanSheetAway, BetAwayWin},
		})
	}
	if countMatches(away, bothScored) >= 4 {
		patterns = append(patterns, Pattern{
			Name:        PatternBTTSAwayTrend,
			Strength:    0.65,
			Description: "Both teams score in most away fixtures",
			Markets:     []string{BetBTTSYes, BetOver15},
		})
	}

	return patterns
}

func countMatches(history []*models.Match, pred func(*models.Match) bool) int {
	n := 0
	for _, m := range history {
		if pred(m) {
			n++
		}
	}
	return n
}
