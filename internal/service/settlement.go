package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/analysis"
	"github.com/yourusername/mister-predictor/internal/metrics"
	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

// SettlementService resolves open signals against finished matches, updates
// the bankroll ledger and feeds pattern outcomes back into the reliability
// stats
type SettlementService struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(repos *repository.Repositories, logger *logrus.Logger) *SettlementService {
	return &SettlementService{repos: repos, logger: logger}
}

// SettlementReport summarizes one settlement pass
type SettlementReport struct {
	MatchesProcessed int
	SignalsSettled   int
	SignalsSkipped   int
	TotalPnL         decimal.Decimal
}

// SettleAll resolves every unresolved signal attached to a finished match
func (s *SettlementService) SettleAll(ctx context.Context) (*SettlementReport, error) {
	matches, err := s.repos.Match.GetFinishedWithUnresolvedSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settleable matches: %w", err)
	}

	report := &SettlementReport{TotalPnL: decimal.Zero}
	for _, match := range matches {
		if err := s.settleMatch(ctx, match, report); err != nil {
			s.logger.WithError(err).WithField("match_id", match.ID).Error("Failed to settle match")
			continue
		}
		report.MatchesProcessed++
	}

	if report.SignalsSettled > 0 {
		if entry, err := s.repos.Bankroll.GetCurrentBalance(ctx); err == nil {
			metrics.UpdateBankroll(entry.BalanceFloat())
		}
	}

	s.logger.WithFields(logrus.Fields{
		"matches": report.MatchesProcessed,
		"settled": report.SignalsSettled,
		"skipped": report.SignalsSkipped,
		"pnl":     report.TotalPnL.String(),
	}).Info("Settlement pass complete")
	return report, nil
}

func (s *SettlementService) settleMatch(ctx context.Context, match *models.Match, report *SettlementReport) error {
	signals, err := s.repos.Signal.GetByMatchID(ctx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to load signals: %w", err)
	}

	for _, signal := range signals {
		if signal.IsResolved() {
			continue
		}

		won, ok := EvaluateBetOutcome(signal.SuggestedBet, match)
		if !ok {
			// Missing half-time data etc.; leave the signal open
			report.SignalsSkipped++
			s.logger.WithFields(logrus.Fields{
				"match_id": match.ID,
				"bet":      signal.SuggestedBet,
			}).Warn("Signal not settleable from recorded scores")
			continue
		}

		if err := s.repos.Signal.SetResult(ctx, signal.ID.String(), won); err != nil {
			return fmt.Errorf("failed to set result for signal %s: %w", signal.ID, err)
		}
		metrics.RecordSettlement(won)
		report.SignalsSettled++

		pnl := signalPnL(signal, won)
		report.TotalPnL = report.TotalPnL.Add(pnl)
		if err := s.appendBankroll(ctx, match.ID, signal, pnl); err != nil {
			return err
		}

		s.recordPatternOutcomes(ctx, signal, won)
	}

	return nil
}

// signalPnL returns the ledger movement for a settled signal: stake times
// net odds on a win, the lost stake otherwise
func signalPnL(signal *models.Signal, won bool) decimal.Decimal {
	stake := decimal.NewFromFloat(signal.RecommendedStake)
	if won {
		netOdds := decimal.NewFromFloat(signal.BookmakerOdds - 1)
		return stake.Mul(netOdds).Round(2)
	}
	return stake.Neg()
}

func (s *SettlementService) appendBankroll(ctx context.Context, matchID int64, signal *models.Signal, pnl decimal.Decimal) error {
	current, err := s.repos.Bankroll.GetCurrentBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to read bankroll: %w", err)
	}

	entry := &models.BankrollEntry{
		Timestamp: time.Now().UTC(),
		Balance:   current.Balance.Add(pnl),
		PnL:       pnl,
		Stake:     decimal.NewFromFloat(signal.RecommendedStake),
		MatchID:   &matchID,
	}
	if err := s.repos.Bankroll.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append bankroll entry: %w", err)
	}
	return nil
}

// recordPatternOutcomes feeds the signal's result back into each endorsing
// pattern's reliability aggregate. Failures here are logged, not fatal: a
// stat update is advisory and must not block settlement.
func (s *SettlementService) recordPatternOutcomes(ctx context.Context, signal *models.Signal, won bool) {
	if signal.PatternsDetected == "" {
		return
	}
	for _, name := range strings.Split(signal.PatternsDetected, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		stat, err := s.repos.PatternStat.RecordOutcome(ctx, name, won)
		if err != nil {
			s.logger.WithError(err).WithField("pattern", name).Warn("Failed to record pattern outcome")
			continue
		}
		metrics.UpdatePatternReliability(stat.PatternName, stat.ReliabilityScore)
	}
}

// EvaluateBetOutcome resolves a bet type against a finished match. The
// second return is false when the needed score data is missing: half-time
// markets need a recorded half-time score, and the late-goal market is
// settled from second-half goals as the closest proxy the score data
// supports.
func EvaluateBetOutcome(betType string, match *models.Match) (won bool, ok bool) {
	if !match.IsFinished() {
		return false, false
	}

	switch betType {
	case analysis.BetHomeWin:
		return match.Outcome() == "home", true
	case analysis.BetDraw:
		return match.Outcome() == "draw", true
	case analysis.BetAwayWin:
		return match.Outcome() == "away", true
	case analysis.BetOver15:
		return match.TotalGoals() >= 2, true
	case analysis.BetUnder15:
		return match.TotalGoals() < 2, true
	case analysis.BetOver25:
		return match.TotalGoals() >= 3, true
	case analysis.BetUnder25:
		return match.TotalGoals() < 3, true
	case analysis.BetOver35:
		return match.TotalGoals() >= 4, true
	case analysis.BetUnder35:
		return match.TotalGoals() < 4, true
	case analysis.BetBTTSYes:
		return *match.HomeScore > 0 && *match.AwayScore > 0, true
	case analysis.BetBTTSNo:
		return *match.HomeScore == 0 || *match.AwayScore == 0, true
	case analysis.BetCleanSheetHome:
		return *match.AwayScore == 0, true
	case analysis.BetCleanSheetAway:
		return *match.HomeScore == 0, true
	case analysis.BetOddGoals:
		return match.TotalGoals()%2 == 1, true
	case analysis.BetEvenGoals:
		return match.TotalGoals()%2 == 0, true
	case analysis.BetHTHome:
		if !match.HasHalfTimeScore() {
			return false, false
		}
		return *match.HomeHTScore > *match.AwayHTScore, true
	case analysis.BetHTDraw:
		if !match.HasHalfTimeScore() {
			return false, false
		}
		return *match.HomeHTScore == *match.AwayHTScore, true
	case analysis.BetHTAway:
		if !match.HasHalfTimeScore() {
			return false, false
		}
		return *match.HomeHTScore < *match.AwayHTScore, true
	case analysis.BetHTOver05:
		if !match.HasHalfTimeScore() {
			return false, false
		}
		return *match.HomeHTScore+*match.AwayHTScore >= 1, true
	case analysis.BetLateGoal:
		if !match.HasHalfTimeScore() {
			return false, false
		}
		return match.SecondHalfGoals() > 0, true
	default:
		return false, false
	}
}
