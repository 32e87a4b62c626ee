package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

const patternStatColumns = `
	id, pattern_name, occurrences, wins, losses, reliability_score, updated_at`

// PostgresPatternStatRepository implements PatternStatRepository for
// PostgreSQL
type PostgresPatternStatRepository struct {
	db *database.DB
}

// NewPostgresPatternStatRepository creates a new pattern stat repository
func NewPostgresPatternStatRepository(db *database.DB) PatternStatRepository {
	return &PostgresPatternStatRepository{db: db}
}

// GetByName retrieves the reliability aggregate for a pattern name
func (r *PostgresPatternStatRepository) GetByName(ctx context.Context, name string) (*models.PatternStat, error) {
	query := fmt.Sprintf("SELECT %s FROM pattern_stats WHERE pattern_name = $1", patternStatColumns)

	stat := &models.PatternStat{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&stat.ID, &stat.PatternName, &stat.Occurrences, &stat.Wins, &stat.Losses,
		&stat.ReliabilityScore, &stat.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern stat: %w", err)
	}

	return stat, nil
}

// GetAll retrieves every pattern aggregate
func (r *PostgresPatternStatRepository) GetAll(ctx context.Context) ([]*models.PatternStat, error) {
	query := fmt.Sprintf("SELECT %s FROM pattern_stats ORDER BY pattern_name ASC", patternStatColumns)

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.PatternStat
	for rows.Next() {
		stat := &models.PatternStat{}
		err := rows.Scan(
			&stat.ID, &stat.PatternName, &stat.Occurrences, &stat.Wins, &stat.Losses,
			&stat.ReliabilityScore, &stat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern stat: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// RecordOutcome folds one resolved result into the named pattern's
// aggregate, seeding the row on first sight
func (r *PostgresPatternStatRepository) RecordOutcome(ctx context.Context, name string, won bool) (*models.PatternStat, error) {
	wins, losses := 0, 1
	if won {
		wins, losses = 1, 0
	}

	query := fmt.Sprintf(`
		INSERT INTO pattern_stats (pattern_name, occurrences, wins, losses, reliability_score)
		VALUES ($1, 1, $2, $3, $4)
		ON CONFLICT (pattern_name) DO UPDATE SET
			occurrences = pattern_stats.occurrences + 1,
			wins = pattern_stats.wins + $2,
			losses = pattern_stats.losses + $3,
			reliability_score = (pattern_stats.wins + $2)::float / (pattern_stats.occurrences + 1),
			updated_at = NOW()
		RETURNING %s
	`, patternStatColumns)

	stat := &models.PatternStat{}
	err := r.db.GetPool().QueryRow(ctx, query, name, wins, losses, float64(wins)).Scan(
		&stat.ID, &stat.PatternName, &stat.Occurrences, &stat.Wins, &stat.Losses,
		&stat.ReliabilityScore, &stat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record pattern outcome: %w", err)
	}

	return stat, nil
}
