package models

import (
	"time"
)

// MatchStatus represents the lifecycle status of a match
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusTimed     MatchStatus = "TIMED"
	MatchStatusInPlay    MatchStatus = "IN_PLAY"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusPostponed MatchStatus = "POSTPONED"
)

// Match represents a league fixture. Score fields stay nil until the match
// finishes; the predicted probability fields are cached by the pipeline after
// a successful analysis pass and are the only mutation a finished match sees.
type Match struct {
	ID            int64       `db:"id" json:"id"`
	ExternalID    int64       `db:"external_id" json:"external_id"`
	UTCDate       time.Time   `db:"utc_date" json:"utc_date" validate:"required"`
	Status        MatchStatus `db:"status" json:"status"`
	Matchday      *int        `db:"matchday" json:"matchday"`
	Season        *string     `db:"season" json:"season"`
	HomeTeamID    int64       `db:"home_team_id" json:"home_team_id"`
	AwayTeamID    int64       `db:"away_team_id" json:"away_team_id"`
	HomeScore     *int        `db:"home_score" json:"home_score"`
	AwayScore     *int        `db:"away_score" json:"away_score"`
	HomeHTScore   *int        `db:"home_ht_score" json:"home_ht_score"`
	AwayHTScore   *int        `db:"away_ht_score" json:"away_ht_score"`
	PredictedHome *float64    `db:"predicted_home_win_prob" json:"predicted_home_win_prob"`
	PredictedDraw *float64    `db:"predicted_draw_prob" json:"predicted_draw_prob"`
	PredictedAway *float64    `db:"predicted_away_win_prob" json:"predicted_away_win_prob"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// IsFinished reports whether the match has a final result
func (m *Match) IsFinished() bool {
	return m.Status == MatchStatusFinished && m.HomeScore != nil && m.AwayScore != nil
}

// IsAnalyzable reports whether the pipeline should consider this match:
// not yet in progress and starting in the future
func (m *Match) IsAnalyzable(now time.Time) bool {
	if m.Status != MatchStatusScheduled && m.Status != MatchStatusTimed {
		return false
	}
	return m.UTCDate.After(now)
}

// HasHalfTimeScore reports whether a half-time score was recorded
func (m *Match) HasHalfTimeScore() bool {
	return m.HomeHTScore != nil && m.AwayHTScore != nil
}

// TotalGoals returns the combined full-time goal count, or 0 if unfinished
func (m *Match) TotalGoals() int {
	if m.HomeScore == nil || m.AwayScore == nil {
		return 0
	}
	return *m.HomeScore + *m.AwayScore
}

// SecondHalfGoals returns goals scored after half time; requires both scores
func (m *Match) SecondHalfGoals() int {
	if !m.IsFinished() || !m.HasHalfTimeScore() {
		return 0
	}
	return m.TotalGoals() - (*m.HomeHTScore + *m.AwayHTScore)
}

// Outcome returns the 1x2 result key for a finished match: home, draw or away
func (m *Match) Outcome() string {
	if !m.IsFinished() {
		return ""
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return "home"
	case *m.HomeScore < *m.AwayScore:
		return "away"
	default:
		return "draw"
	}
}
