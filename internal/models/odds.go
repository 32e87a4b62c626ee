package models

import "time"

// OddsSnapshot represents a point-in-time bookmaker quote for a match.
// Totals markets are quoted independently of 1x2 and may be absent.
type OddsSnapshot struct {
	ID         int64  `db:"id" json:"id"`
	MatchID    int64  `db:"match_id" json:"match_id" validate:"required"`
	Bookmaker  string `db:"bookmaker" json:"bookmaker"`
	MarketType string `db:"market_type" json:"market_type"`

	HomeOdds *float64 `db:"home_odds" json:"home_odds"`
	DrawOdds *float64 `db:"draw_odds" json:"draw_odds"`
	AwayOdds *float64 `db:"away_odds" json:"away_odds"`

	Over15Odds  *float64 `db:"over_15_odds" json:"over_15_odds"`
	Under15Odds *float64 `db:"under_15_odds" json:"under_15_odds"`
	Over25Odds  *float64 `db:"over_25_odds" json:"over_25_odds"`
	Under25Odds *float64 `db:"under_25_odds" json:"under_25_odds"`
	Over35Odds  *float64 `db:"over_35_odds" json:"over_35_odds"`
	Under35Odds *float64 `db:"under_35_odds" json:"under_35_odds"`

	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// GetImpliedProbability returns 1/odds for a quoted decimal price,
// or 0 when the price is missing or unbackable
func GetImpliedProbability(odds *float64) float64 {
	if odds == nil || *odds <= 1 {
		return 0
	}
	return 1.0 / *odds
}
