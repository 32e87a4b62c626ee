package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

const matchColumns = `
	id, external_id, utc_date, status, matchday, season,
	home_team_id, away_team_id, home_score, away_score,
	home_ht_score, away_ht_score,
	predicted_home_win_prob, predicted_draw_prob, predicted_away_win_prob,
	created_at, updated_at`

const errScanMatch = "failed to scan match: %w"

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// Upsert inserts a match or refreshes it by external ID
func (r *PostgresMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			external_id, utc_date, status, matchday, season,
			home_team_id, away_team_id, home_score, away_score,
			home_ht_score, away_ht_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (external_id) DO UPDATE SET
			utc_date = EXCLUDED.utc_date,
			status = EXCLUDED.status,
			matchday = EXCLUDED.matchday,
			season = EXCLUDED.season,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			home_ht_score = EXCLUDED.home_ht_score,
			away_ht_score = EXCLUDED.away_ht_score,
			updated_at = NOW()
		RETURNING id
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		match.ExternalID, match.UTCDate, match.Status, match.Matchday, match.Season,
		match.HomeTeamID, match.AwayTeamID, match.HomeScore, match.AwayScore,
		match.HomeHTScore, match.AwayHTScore,
	).Scan(&match.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	return nil
}

// GetByID retrieves a match by ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	query := fmt.Sprintf("SELECT %s FROM matches WHERE id = $1", matchColumns)

	match := &models.Match{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&match.ID, &match.ExternalID, &match.UTCDate, &match.Status, &match.Matchday, &match.Season,
		&match.HomeTeamID, &match.AwayTeamID, &match.HomeScore, &match.AwayScore,
		&match.HomeHTScore, &match.AwayHTScore,
		&match.PredictedHome, &match.PredictedDraw, &match.PredictedAway,
		&match.CreatedAt, &match.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// GetUpcoming retrieves matches that have not kicked off, soonest first
func (r *PostgresMatchRepository) GetUpcoming(ctx context.Context) ([]*models.Match, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE status IN ('SCHEDULED', 'TIMED') AND utc_date > NOW()
		ORDER BY utc_date ASC
	`, matchColumns)

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetRecentFinishedByTeam retrieves a team's recent finished matches at the
// given venue, returned oldest first so trailing windows read naturally
func (r *PostgresMatchRepository) GetRecentFinishedByTeam(ctx context.Context, teamID int64, venue Venue, limit int) ([]*models.Match, error) {
	sideColumn := "home_team_id"
	if venue == VenueAway {
		sideColumn = "away_team_id"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s FROM matches
			WHERE %s = $1 AND status = 'FINISHED'
			ORDER BY utc_date DESC
			LIMIT $2
		) recent ORDER BY utc_date ASC
	`, matchColumns, matchColumns, sideColumn)

	rows, err := r.db.GetPool().Query(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query team history: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetFinishedWithUnresolvedSignals retrieves finished matches that still
// carry signals without a settled result
func (r *PostgresMatchRepository) GetFinishedWithUnresolvedSignals(ctx context.Context) ([]*models.Match, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM matches m
		JOIN signals s ON s.match_id = m.id
		WHERE m.status = 'FINISHED' AND s.result_won IS NULL
	`, prefixColumns("m", matchColumns))

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsettled matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// CachePredictionsTx stores the model's 1x2 probabilities on the match row
func (r *PostgresMatchRepository) CachePredictionsTx(ctx context.Context, tx pgx.Tx, matchID int64, home, draw, away float64) error {
	query := `
		UPDATE matches SET
			predicted_home_win_prob = $2,
			predicted_draw_prob = $3,
			predicted_away_win_prob = $4,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := tx.Exec(ctx, query, matchID, home, draw, away)
	if err != nil {
		return fmt.Errorf("failed to cache match predictions: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanMatches(rows pgx.Rows) ([]*models.Match, error) {
	var matches []*models.Match
	for rows.Next() {
		match := &models.Match{}
		err := rows.Scan(
			&match.ID, &match.ExternalID, &match.UTCDate, &match.Status, &match.Matchday, &match.Season,
			&match.HomeTeamID, &match.AwayTeamID, &match.HomeScore, &match.AwayScore,
			&match.HomeHTScore, &match.AwayHTScore,
			&match.PredictedHome, &match.PredictedDraw, &match.PredictedAway,
			&match.CreatedAt, &match.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanMatch, err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

func prefixColumns(alias, columns string) string {
	out := ""
	for i, col := range splitColumns(columns) {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + col
	}
	return out
}

func splitColumns(columns string) []string {
	var cols []string
	field := ""
	for _, r := range columns {
		switch r {
		case ',':
			cols = append(cols, field)
			field = ""
		case ' ', '\n', '\t':
		default:
			field += string(r)
		}
	}
	if field != "" {
		cols = append(cols, field)
	}
	return cols
}
