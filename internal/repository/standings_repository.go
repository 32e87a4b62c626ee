package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

// PostgresStandingsRepository implements StandingsRepository for PostgreSQL
type PostgresStandingsRepository struct {
	db *database.DB
}

// NewPostgresStandingsRepository creates a new standings repository
func NewPostgresStandingsRepository(db *database.DB) StandingsRepository {
	return &PostgresStandingsRepository{db: db}
}

// Replace swaps the stored league table for a fresh snapshot in one
// transaction
func (r *PostgresStandingsRepository) Replace(ctx context.Context, standings []*models.StandingSnapshot) error {
	snapshotDate := time.Now().UTC()

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM standings_snapshots"); err != nil {
			return fmt.Errorf("failed to clear standings: %w", err)
		}

		query := `
			INSERT INTO standings_snapshots
				(team_id, position, played, points, goals_for, goals_against, goal_diff, snapshot_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		for _, s := range standings {
			_, err := tx.Exec(ctx, query,
				s.TeamID, s.Position, s.Played, s.Points,
				s.GoalsFor, s.GoalsAgainst, s.GoalDiff, snapshotDate,
			)
			if err != nil {
				return fmt.Errorf("failed to insert standing: %w", err)
			}
		}
		return nil
	})
}

// GetLatest retrieves the most recent standings snapshot ordered by position
func (r *PostgresStandingsRepository) GetLatest(ctx context.Context) ([]*models.StandingSnapshot, error) {
	query := `
		SELECT id, team_id, position, played, points, goals_for, goals_against, goal_diff, snapshot_date
		FROM standings_snapshots
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM standings_snapshots)
		ORDER BY position ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	var standings []*models.StandingSnapshot
	for rows.Next() {
		s := &models.StandingSnapshot{}
		err := rows.Scan(
			&s.ID, &s.TeamID, &s.Position, &s.Played, &s.Points,
			&s.GoalsFor, &s.GoalsAgainst, &s.GoalDiff, &s.SnapshotDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, s)
	}

	return standings, rows.Err()
}
