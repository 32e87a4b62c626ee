package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts a team or refreshes its names by external ID
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) (*models.Team, error) {
	query := `
		INSERT INTO teams (external_id, name, short_name, tla)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			tla = EXCLUDED.tla
		RETURNING id, created_at
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		team.ExternalID, team.Name, team.ShortName, team.TLA,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert team: %w", err)
	}

	return team, nil
}

// GetByExternalID retrieves a team by its provider identifier
func (r *PostgresTeamRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.Team, error) {
	return r.get(ctx, "external_id", externalID)
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	return r.get(ctx, "id", id)
}

func (r *PostgresTeamRepository) get(ctx context.Context, column string, value int64) (*models.Team, error) {
	query := fmt.Sprintf(`
		SELECT id, external_id, name, short_name, tla, created_at
		FROM teams WHERE %s = $1
	`, column)

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, value).Scan(
		&team.ID, &team.ExternalID, &team.Name, &team.ShortName, &team.TLA, &team.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}
