package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

const signalColumns = `
	id, match_id, created_at, market_key, suggested_bet,
	predicted_prob, implied_prob, value_edge, bookmaker_odds, has_live_odds,
	confidence_score, market_confidence, consistency_pct, recommended_stake, rank_in_match,
	expected_outcome, patterns_detected, explanation, is_published, result_won`

const errScanSignal = "failed to scan signal: %w"

// PostgresSignalRepository implements SignalRepository for PostgreSQL
type PostgresSignalRepository struct {
	db *database.DB
}

// NewPostgresSignalRepository creates a new signal repository
func NewPostgresSignalRepository(db *database.DB) SignalRepository {
	return &PostgresSignalRepository{db: db}
}

// GetByMatchID retrieves a match's signals ordered by rank (unranked rows
// last)
func (r *PostgresSignalRepository) GetByMatchID(ctx context.Context, matchID int64) ([]*models.Signal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM signals
		WHERE match_id = $1
		ORDER BY rank_in_match ASC NULLS LAST, created_at ASC
	`, signalColumns)

	rows, err := r.db.GetPool().Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for match: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetLatest retrieves the newest signals across matches
func (r *PostgresSignalRepository) GetLatest(ctx context.Context, limit int) ([]*models.Signal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM signals
		ORDER BY created_at DESC, rank_in_match ASC NULLS LAST
		LIMIT $1
	`, signalColumns)

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetRecentResolved retrieves the most recently settled signals, newest last
func (r *PostgresSignalRepository) GetRecentResolved(ctx context.Context, limit int) ([]*models.Signal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s FROM signals
			WHERE result_won IS NOT NULL
			ORDER BY created_at DESC
			LIMIT $1
		) recent ORDER BY created_at ASC
	`, signalColumns, signalColumns)

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolved signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// SetResult marks a signal as won or lost
func (r *PostgresSignalRepository) SetResult(ctx context.Context, id string, won bool) error {
	signalID, err := uuid.Parse(id)
	if err != nil {
		return models.ErrInvalidID
	}

	commandTag, err := r.db.GetPool().Exec(ctx,
		"UPDATE signals SET result_won = $2 WHERE id = $1", signalID, won)
	if err != nil {
		return fmt.Errorf("failed to set signal result: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// MarkPublished flags signals as delivered to subscribers
func (r *PostgresSignalRepository) MarkPublished(ctx context.Context, ids []string) error {
	signalIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return models.ErrInvalidID
		}
		signalIDs = append(signalIDs, parsed)
	}

	_, err := r.db.GetPool().Exec(ctx,
		"UPDATE signals SET is_published = TRUE WHERE id = ANY($1)", signalIDs)
	if err != nil {
		return fmt.Errorf("failed to mark signals published: %w", err)
	}

	return nil
}

// CreateTx inserts a signal within the pipeline's run transaction
func (r *PostgresSignalRepository) CreateTx(ctx context.Context, tx pgx.Tx, signal *models.Signal) error {
	query := `
		INSERT INTO signals (
			id, match_id, market_key, suggested_bet,
			predicted_prob, implied_prob, value_edge, bookmaker_odds, has_live_odds,
			confidence_score, market_confidence, consistency_pct, recommended_stake, rank_in_match,
			expected_outcome, patterns_detected, explanation, is_published
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := tx.Exec(ctx, query,
		signal.ID, signal.MatchID, signal.MarketKey, signal.SuggestedBet,
		signal.PredictedProb, signal.ImpliedProb, signal.ValueEdge, signal.BookmakerOdds, signal.HasLiveOdds,
		signal.ConfidenceScore, signal.MarketConfidence, signal.ConsistencyPct, signal.RecommendedStake, signal.RankInMatch,
		signal.ExpectedOutcome, signal.PatternsDetected, signal.Explanation, signal.IsPublished,
	)
	if err != nil {
		return fmt.Errorf("failed to create signal within transaction: %w", err)
	}

	return nil
}

// DeleteUnresolvedForMatchTx purges a match's unsettled signals within the
// pipeline's run transaction. Settled rows are history and stay.
func (r *PostgresSignalRepository) DeleteUnresolvedForMatchTx(ctx context.Context, tx pgx.Tx, matchID int64) error {
	_, err := tx.Exec(ctx,
		"DELETE FROM signals WHERE match_id = $1 AND result_won IS NULL", matchID)
	if err != nil {
		return fmt.Errorf("failed to delete signals within transaction: %w", err)
	}

	return nil
}

func scanSignals(rows pgx.Rows) ([]*models.Signal, error) {
	var signals []*models.Signal
	for rows.Next() {
		signal := &models.Signal{}
		err := rows.Scan(
			&signal.ID, &signal.MatchID, &signal.CreatedAt, &signal.MarketKey, &signal.SuggestedBet,
			&signal.PredictedProb, &signal.ImpliedProb, &signal.ValueEdge, &signal.BookmakerOdds, &signal.HasLiveOdds,
			&signal.ConfidenceScore, &signal.MarketConfidence, &signal.ConsistencyPct, &signal.RecommendedStake, &signal.RankInMatch,
			&signal.ExpectedOutcome, &signal.PatternsDetected, &signal.Explanation, &signal.IsPublished, &signal.ResultWon,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanSignal, err)
		}
		signals = append(signals, signal)
	}

	return signals, rows.Err()
}
