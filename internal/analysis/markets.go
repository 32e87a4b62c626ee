// Package analysis implements the betting decision pipeline: feature
// derivation, a Poisson outcome model, heuristic pattern detection, value
// detection against bookmaker prices, and Kelly staking.
package analysis

// Bet types evaluated by the value detector. Quoted markets are priced from
// the live odds snapshot; the remainder are priced against fixed reference
// odds because no bookmaker feed exists for them.
const (
	BetHomeWin        = "HOME_WIN"
	BetDraw           = "DRAW"
	BetAwayWin        = "AWAY_WIN"
	BetOver15         = "OVER_1.5"
	BetUnder15        = "UNDER_1.5"
	BetOver25         = "OVER_2.5"
	BetUnder25        = "UNDER_2.5"
	BetOver35         = "OVER_3.5"
	BetUnder35        = "UNDER_3.5"
	BetBTTSYes        = "BTTS_YES"
	BetBTTSNo         = "BTTS_NO"
	BetCleanSheetHome = "CLEAN_SHEET_HOME"
	BetCleanSheetAway = "CLEAN_SHEET_AWAY"
	BetOddGoals       = "ODD_GOALS"
	BetEvenGoals      = "EVEN_GOALS"
	BetHTHome         = "HT_HOME"
	BetHTDraw         = "HT_DRAW"
	BetHTAway         = "HT_AWAY"
	BetHTOver05       = "HT_OVER_0.5"
	BetLateGoal       = "LATE_GOAL"
)

// Market categories used by the diversification pass
const (
	Market1X2        = "1x2"
	MarketTotals     = "totals"
	MarketBTTS       = "btts"
	MarketCleanSheet = "clean_sheet"
	MarketOddEven    = "odd_even"
	MarketHalfTime   = "half_time"
	MarketLateGoal   = "late_goal"
)
