package models

import (
	"time"

	"github.com/google/uuid"
)

// SignalDecision tags a signal as actionable or informational
type SignalDecision string

const (
	SignalDecisionBet  SignalDecision = "BET"
	SignalDecisionPass SignalDecision = "PASS"
)

// Signal is a persisted betting recommendation for one (match, bet type).
// RankInMatch is 1-based selection order within the match's signal set;
// rows with a nil rank predate ranked generation and are regenerated.
type Signal struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	MatchID   int64     `db:"match_id" json:"match_id" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	MarketKey     string  `db:"market_key" json:"market_key"`
	SuggestedBet  string  `db:"suggested_bet" json:"suggested_bet" validate:"required"`
	PredictedProb float64 `db:"predicted_prob" json:"predicted_prob"`
	ImpliedProb   float64 `db:"implied_prob" json:"implied_prob"`
	ValueEdge     float64 `db:"value_edge" json:"value_edge"`
	BookmakerOdds float64 `db:"bookmaker_odds" json:"bookmaker_odds"`
	HasLiveOdds   bool    `db:"has_live_odds" json:"has_live_odds"`

	ConfidenceScore  float64 `db:"confidence_score" json:"confidence_score"`
	MarketConfidence float64 `db:"market_confidence" json:"market_confidence"`
	ConsistencyPct   float64 `db:"consistency_pct" json:"consistency_pct"`
	RecommendedStake float64 `db:"recommended_stake" json:"recommended_stake"`
	RankInMatch      *int    `db:"rank_in_match" json:"rank_in_match"`

	ExpectedOutcome  string `db:"expected_outcome" json:"expected_outcome"`
	PatternsDetected string `db:"patterns_detected" json:"patterns_detected"`
	Explanation      string `db:"explanation" json:"explanation"`

	IsPublished bool  `db:"is_published" json:"is_published"`
	ResultWon   *bool `db:"result_won" json:"result_won"`
}

// IsRanked reports whether the signal carries a diversification rank
func (s *Signal) IsRanked() bool {
	return s.RankInMatch != nil
}

// IsResolved reports whether the signal's outcome is settled
func (s *Signal) IsResolved() bool {
	return s.ResultWon != nil
}
