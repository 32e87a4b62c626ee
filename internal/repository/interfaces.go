package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yourusername/mister-predictor/internal/models"
)

// Venue selects which side of a fixture a team played
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	Upsert(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int64) (*models.Match, error)
	GetUpcoming(ctx context.Context) ([]*models.Match, error)
	// GetRecentFinishedByTeam returns a team's most recent finished matches
	// at the given venue, oldest first.
	GetRecentFinishedByTeam(ctx context.Context, teamID int64, venue Venue, limit int) ([]*models.Match, error)
	GetFinishedWithUnresolvedSignals(ctx context.Context) ([]*models.Match, error)
	// CachePredictionsTx stores the 1x2 model probabilities on the match row
	// inside the pipeline's run transaction.
	CachePredictionsTx(ctx context.Context, tx pgx.Tx, matchID int64, home, draw, away float64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) (*models.Team, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.Team, error)
	GetByID(ctx context.Context, id int64) (*models.Team, error)
}

// StandingsRepository defines the interface for league table snapshots
type StandingsRepository interface {
	// Replace swaps the stored snapshot for a fresh one.
	Replace(ctx context.Context, standings []*models.StandingSnapshot) error
	GetLatest(ctx context.Context) ([]*models.StandingSnapshot, error)
}

// OddsRepository defines the interface for odds snapshot access. The core
// pipeline only reads; the data-fetch layer appends.
type OddsRepository interface {
	Insert(ctx context.Context, odds *models.OddsSnapshot) error
	GetLatestForMatch(ctx context.Context, matchID int64) (*models.OddsSnapshot, error)
	// GetAllForMatch returns the full history in chronological order.
	GetAllForMatch(ctx context.Context, matchID int64) ([]*models.OddsSnapshot, error)
}

// SignalRepository defines the interface for signal persistence
type SignalRepository interface {
	GetByMatchID(ctx context.Context, matchID int64) ([]*models.Signal, error)
	GetLatest(ctx context.Context, limit int) ([]*models.Signal, error)
	// GetRecentResolved returns the most recently settled signals,
	// newest last, for streak sizing.
	GetRecentResolved(ctx context.Context, limit int) ([]*models.Signal, error)
	SetResult(ctx context.Context, id string, won bool) error
	MarkPublished(ctx context.Context, ids []string) error
	CreateTx(ctx context.Context, tx pgx.Tx, signal *models.Signal) error
	DeleteUnresolvedForMatchTx(ctx context.Context, tx pgx.Tx, matchID int64) error
}

// PatternStatRepository defines the interface for pattern reliability stats
type PatternStatRepository interface {
	GetByName(ctx context.Context, name string) (*models.PatternStat, error)
	GetAll(ctx context.Context) ([]*models.PatternStat, error)
	// RecordOutcome creates or updates the named pattern's aggregate with
	// one resolved result. Used by settlement only.
	RecordOutcome(ctx context.Context, name string, won bool) (*models.PatternStat, error)
}

// BankrollRepository defines the interface for the bankroll ledger
type BankrollRepository interface {
	GetCurrentBalance(ctx context.Context) (*models.BankrollEntry, error)
	GetHistory(ctx context.Context, limit int) ([]*models.BankrollEntry, error)
	Append(ctx context.Context, entry *models.BankrollEntry) error
	InitializeIfEmpty(ctx context.Context, initialBalance decimal.Decimal) error
}
