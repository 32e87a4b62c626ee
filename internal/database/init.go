package database

import (
	"context"
	"fmt"

	"github.com/yourusername/mister-predictor/internal/config"
)

// Initialize creates the connection pool and ensures the schema exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// schemaStatements is applied in order on startup. Statements are idempotent
// so repeated runs are safe; column changes still need a manual migration.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id          BIGSERIAL PRIMARY KEY,
		external_id BIGINT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		short_name  TEXT NOT NULL DEFAULT '',
		tla         TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id                      BIGSERIAL PRIMARY KEY,
		external_id             BIGINT NOT NULL UNIQUE,
		utc_date                TIMESTAMPTZ NOT NULL,
		status                  TEXT NOT NULL,
		matchday                INT,
		season                  TEXT,
		home_team_id            BIGINT NOT NULL REFERENCES teams(id),
		away_team_id            BIGINT NOT NULL REFERENCES teams(id),
		home_score              INT,
		away_score              INT,
		home_ht_score           INT,
		away_ht_score           INT,
		predicted_home_win_prob DOUBLE PRECISION,
		predicted_draw_prob     DOUBLE PRECISION,
		predicted_away_win_prob DOUBLE PRECISION,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_status_date ON matches (status, utc_date)`,
	`CREATE TABLE IF NOT EXISTS standings_snapshots (
		id            BIGSERIAL PRIMARY KEY,
		team_id       BIGINT NOT NULL REFERENCES teams(id),
		position      INT NOT NULL,
		played        INT NOT NULL,
		points        INT NOT NULL,
		goals_for     INT NOT NULL,
		goals_against INT NOT NULL,
		goal_diff     INT NOT NULL,
		snapshot_date TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS odds_history (
		id             BIGSERIAL PRIMARY KEY,
		match_id       BIGINT NOT NULL REFERENCES matches(id),
		bookmaker      TEXT NOT NULL,
		market_type    TEXT NOT NULL,
		home_odds      DOUBLE PRECISION,
		draw_odds      DOUBLE PRECISION,
		away_odds      DOUBLE PRECISION,
		over_15_odds   DOUBLE PRECISION,
		under_15_odds  DOUBLE PRECISION,
		over_25_odds   DOUBLE PRECISION,
		under_25_odds  DOUBLE PRECISION,
		over_35_odds   DOUBLE PRECISION,
		under_35_odds  DOUBLE PRECISION,
		recorded_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_odds_history_match ON odds_history (match_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS signals (
		id                UUID PRIMARY KEY,
		match_id          BIGINT NOT NULL REFERENCES matches(id),
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		market_key        TEXT NOT NULL,
		suggested_bet     TEXT NOT NULL,
		predicted_prob    DOUBLE PRECISION NOT NULL,
		implied_prob      DOUBLE PRECISION NOT NULL,
		value_edge        DOUBLE PRECISION NOT NULL,
		bookmaker_odds    DOUBLE PRECISION NOT NULL,
		has_live_odds     BOOLEAN NOT NULL DEFAULT FALSE,
		confidence_score  DOUBLE PRECISION NOT NULL,
		market_confidence DOUBLE PRECISION NOT NULL,
		consistency_pct   DOUBLE PRECISION NOT NULL,
		recommended_stake DOUBLE PRECISION NOT NULL,
		rank_in_match     INT,
		expected_outcome  TEXT NOT NULL DEFAULT '',
		patterns_detected TEXT NOT NULL DEFAULT '',
		explanation       TEXT NOT NULL DEFAULT '',
		is_published      BOOLEAN NOT NULL DEFAULT FALSE,
		result_won        BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_match ON signals (match_id)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_unresolved ON signals (match_id) WHERE result_won IS NULL`,
	`CREATE TABLE IF NOT EXISTS pattern_stats (
		id                BIGSERIAL PRIMARY KEY,
		pattern_name      TEXT NOT NULL UNIQUE,
		occurrences       INT NOT NULL DEFAULT 0,
		wins              INT NOT NULL DEFAULT 0,
		losses            INT NOT NULL DEFAULT 0,
		reliability_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bankroll_history (
		id        BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		balance   NUMERIC(14,2) NOT NULL,
		pnl       NUMERIC(14,2) NOT NULL DEFAULT 0,
		stake     NUMERIC(14,2) NOT NULL DEFAULT 0,
		match_id  BIGINT REFERENCES matches(id)
	)`,
}

// EnsureSchema applies the idempotent DDL set.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
