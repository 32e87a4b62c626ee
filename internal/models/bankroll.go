package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankrollEntry is one row of the bankroll ledger. Balance and PnL are held
// as decimals; the staking engine consumes the balance as a float snapshot
// taken once per pipeline run.
type BankrollEntry struct {
	ID        int64           `db:"id" json:"id"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
	Balance   decimal.Decimal `db:"balance" json:"balance" validate:"required"`
	PnL       decimal.Decimal `db:"pnl" json:"pnl"`
	Stake     decimal.Decimal `db:"stake" json:"stake"`
	MatchID   *int64          `db:"match_id" json:"match_id"`
}

// BalanceFloat returns the balance as a float64 for stake computation
func (b *BankrollEntry) BalanceFloat() float64 {
	return b.Balance.InexactFloat64()
}
