package repository

import (
	"fmt"

	"github.com/yourusername/mister-predictor/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Match       MatchRepository
	Team        TeamRepository
	Standings   StandingsRepository
	Odds        OddsRepository
	Signal      SignalRepository
	PatternStat PatternStatRepository
	Bankroll    BankrollRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:       NewPostgresMatchRepository(db),
		Team:        NewPostgresTeamRepository(db),
		Standings:   NewPostgresStandingsRepository(db),
		Odds:        NewPostgresOddsRepository(db),
		Signal:      NewPostgresSignalRepository(db),
		PatternStat: NewPostgresPatternStatRepository(db),
		Bankroll:    NewPostgresBankrollRepository(db),
	}, nil
}
