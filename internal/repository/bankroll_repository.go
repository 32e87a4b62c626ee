package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/models"
)

const bankrollColumns = `id, timestamp, balance, pnl, stake, match_id`

// PostgresBankrollRepository implements BankrollRepository for PostgreSQL
type PostgresBankrollRepository struct {
	db *database.DB
}

// NewPostgresBankrollRepository creates a new bankroll repository
func NewPostgresBankrollRepository(db *database.DB) BankrollRepository {
	return &PostgresBankrollRepository{db: db}
}

// GetCurrentBalance retrieves the newest ledger entry
func (r *PostgresBankrollRepository) GetCurrentBalance(ctx context.Context) (*models.BankrollEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bankroll_history
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`, bankrollColumns)

	entry := &models.BankrollEntry{}
	err := r.db.GetPool().QueryRow(ctx, query).Scan(
		&entry.ID, &entry.Timestamp, &entry.Balance, &entry.PnL, &entry.Stake, &entry.MatchID,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNoBankroll
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll balance: %w", err)
	}

	return entry, nil
}

// GetHistory retrieves the newest ledger entries
func (r *PostgresBankrollRepository) GetHistory(ctx context.Context, limit int) ([]*models.BankrollEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bankroll_history
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`, bankrollColumns)

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bankroll history: %w", err)
	}
	defer rows.Close()

	var entries []*models.BankrollEntry
	for rows.Next() {
		entry := &models.BankrollEntry{}
		err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Balance, &entry.PnL, &entry.Stake, &entry.MatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bankroll entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Append adds a ledger entry
func (r *PostgresBankrollRepository) Append(ctx context.Context, entry *models.BankrollEntry) error {
	query := `
		INSERT INTO bankroll_history (balance, pnl, stake, match_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		entry.Balance, entry.PnL, entry.Stake, entry.MatchID,
	).Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append bankroll entry: %w", err)
	}

	return nil
}

// InitializeIfEmpty seeds the ledger with a starting balance when no entry
// exists yet
func (r *PostgresBankrollRepository) InitializeIfEmpty(ctx context.Context, initialBalance decimal.Decimal) error {
	_, err := r.GetCurrentBalance(ctx)
	if err == nil {
		return nil
	}
	if err != models.ErrNoBankroll {
		return err
	}

	return r.Append(ctx, &models.BankrollEntry{
		Balance: initialBalance,
		PnL:     decimal.Zero,
		Stake:   decimal.Zero,
	})
}
