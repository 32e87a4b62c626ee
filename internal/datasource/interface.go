// Package datasource provides clients for the external fixture, standings
// and odds providers, normalizing their payloads into provider-agnostic
// structures the ingestion service can persist.
package datasource

import (
	"context"
	"errors"
	"time"
)

// FixtureProvider defines the interface for fetching match and standings data
type FixtureProvider interface {
	// FetchMatches retrieves matches for the configured competition within
	// the date range
	FetchMatches(ctx context.Context, dateFrom, dateTo time.Time) ([]MatchData, error)

	// FetchStandings retrieves the current league table for the configured
	// competition
	FetchStandings(ctx context.Context) ([]StandingData, error)

	// Name returns the name of the data source
	Name() string
}

// OddsProvider defines the interface for fetching bookmaker odds
type OddsProvider interface {
	// FetchOdds retrieves current odds for upcoming matches in the
	// configured competition
	FetchOdds(ctx context.Context) ([]OddsData, error)

	// Name returns the name of the data source
	Name() string
}

// MatchData represents normalized match data from any fixture provider
type MatchData struct {
	SourceID          int64     `json:"source_id"`    // Provider's unique match ID
	Competition       string    `json:"competition"`  // Competition code (e.g. "PL")
	Season            string    `json:"season"`       // Season label (e.g. "2025/26")
	Matchday          int       `json:"matchday"`     // Round number
	KickoffTime       time.Time `json:"kickoff_time"` // Kickoff UTC
	Status            string    `json:"status"`       // Provider status, normalized
	HomeTeam          TeamData  `json:"home_team"`    // Home side
	AwayTeam          TeamData  `json:"away_team"`    // Away side
	HomeScore         *int      `json:"home_score"`   // Full-time home goals
	AwayScore         *int      `json:"away_score"`   // Full-time away goals
	HalfTimeHomeScore *int      `json:"half_time_home_score"`
	HalfTimeAwayScore *int      `json:"half_time_away_score"`
	FetchedAt         time.Time `json:"fetched_at"` // When data was fetched
}

// TeamData represents normalized team data from any fixture provider
type TeamData struct {
	SourceID  int64  `json:"source_id"`  // Provider's unique team ID
	Name      string `json:"name"`       // Full team name
	ShortName string `json:"short_name"` // Abbreviated name
	Crest     string `json:"crest"`      // Crest image URL
}

// StandingData represents one row of a normalized league table
type StandingData struct {
	TeamSourceID   int64  `json:"team_source_id"`
	Position       int    `json:"position"`
	PlayedGames    int    `json:"played_games"`
	Won            int    `json:"won"`
	Draw           int    `json:"draw"`
	Lost           int    `json:"lost"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Form           string `json:"form"` // e.g. "W,W,D,L,W"
}

// OddsData represents normalized bookmaker prices for one match
type OddsData struct {
	HomeTeamName string    `json:"home_team_name"`
	AwayTeamName string    `json:"away_team_name"`
	KickoffTime  time.Time `json:"kickoff_time"`
	Bookmaker    string    `json:"bookmaker"`
	HomeWin      *float64  `json:"home_win"`
	Draw         *float64  `json:"draw"`
	AwayWin      *float64  `json:"away_win"`
	Over15       *float64  `json:"over_15"`
	Under15      *float64  `json:"under_15"`
	Over25       *float64  `json:"over_25"`
	Under25      *float64  `json:"under_25"`
	Over35       *float64  `json:"over_35"`
	Under35      *float64  `json:"under_35"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors for callers that match by identity
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
