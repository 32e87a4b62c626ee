package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

const oddsColumns = `
	id, match_id, bookmaker, market_type,
	home_odds, draw_odds, away_odds,
	over_15_odds, under_15_odds, over_25_odds, under_25_odds, over_35_odds, under_35_odds,
	recorded_at`

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// Insert appends an odds snapshot to a match's history
func (r *PostgresOddsRepository) Insert(ctx context.Context, odds *models.OddsSnapshot) error {
	query := `
		INSERT INTO odds_history (
			match_id, bookmaker, market_type,
			home_odds, draw_odds, away_odds,
			over_15_odds, under_15_odds, over_25_odds, under_25_odds, over_35_odds, under_35_odds,
			recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, recorded_at
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		odds.MatchID, odds.Bookmaker, odds.MarketType,
		odds.HomeOdds, odds.DrawOdds, odds.AwayOdds,
		odds.Over15Odds, odds.Under15Odds, odds.Over25Odds, odds.Under25Odds, odds.Over35Odds, odds.Under35Odds,
	).Scan(&odds.ID, &odds.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert odds snapshot: %w", err)
	}

	return nil
}

// GetLatestForMatch retrieves the newest odds snapshot for a match
func (r *PostgresOddsRepository) GetLatestForMatch(ctx context.Context, matchID int64) (*models.OddsSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM odds_history
		WHERE match_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, oddsColumns)

	odds := &models.OddsSnapshot{}
	err := r.db.GetPool().QueryRow(ctx, query, matchID).Scan(
		&odds.ID, &odds.MatchID, &odds.Bookmaker, &odds.MarketType,
		&odds.HomeOdds, &odds.DrawOdds, &odds.AwayOdds,
		&odds.Over15Odds, &odds.Under15Odds, &odds.Over25Odds, &odds.Under25Odds, &odds.Over35Odds, &odds.Under35Odds,
		&odds.RecordedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest odds: %w", err)
	}

	return odds, nil
}

// GetAllForMatch retrieves a match's full odds history, oldest first
func (r *PostgresOddsRepository) GetAllForMatch(ctx context.Context, matchID int64) ([]*models.OddsSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM odds_history
		WHERE match_id = $1
		ORDER BY recorded_at ASC
	`, oddsColumns)

	rows, err := r.db.GetPool().Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds history: %w", err)
	}
	defer rows.Close()

	var history []*models.OddsSnapshot
	for rows.Next() {
		odds := &models.OddsSnapshot{}
		err := rows.Scan(
			&odds.ID, &odds.MatchID, &odds.Bookmaker, &odds.MarketType,
			&odds.HomeOdds, &odds.DrawOdds, &odds.AwayOdds,
			&odds.Over15Odds, &odds.Under15Odds, &odds.Over25Odds, &odds.Under25Odds, &odds.Over35Odds, &odds.Under35Odds,
			&odds.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds snapshot: %w", err)
		}
		history = append(history, odds)
	}

	return history, rows.Err()
}
