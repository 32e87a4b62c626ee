// Package service wires the analysis engines, repositories and external data
// sources into the application's pipelines.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/analysis"
	"github.com/yourusername/mister-predictor/internal/config"
	"github.com/yourusername/mister-predictor/internal/metrics"
	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

// History depth and pattern-boost parameters for one analysis pass
const (
	historyLimit       = 10
	patternBoostPerHit = 0.05
	streakLookback     = 10
)

// MatchStatus classifies the outcome of analyzing one match
type MatchStatus string

const (
	MatchStatusAnalyzed        MatchStatus = "analyzed"
	MatchStatusNoValue         MatchStatus = "no_value"
	MatchStatusAlreadyAnalyzed MatchStatus = "already_analyzed"
	MatchStatusFailed          MatchStatus = "failed"
)

// MatchOutcome is the per-match result of a pipeline run. A failed match
// carries its error; the run itself keeps going.
type MatchOutcome struct {
	MatchID     int64
	Status      MatchStatus
	SignalCount int
	Err         error
}

// RunReport summarizes one full analysis run
type RunReport struct {
	StartedAt      time.Time
	Duration       time.Duration
	Outcomes       []MatchOutcome
	MatchesTotal   int
	SignalsCreated int
	Failures       int
}

// TxRunner runs a function inside a single database transaction. Satisfied
// by *database.DB.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// SignalPipelineService runs the full per-match analysis: feature
// derivation, probability modelling, pattern detection, multi-market value
// scanning, staking and final signal persistence.
type SignalPipelineService struct {
	repos   *repository.Repositories
	db      TxRunner
	profile config.RiskProfile
	logger  *logrus.Logger

	detector    analysis.ValueDetector
	staker      analysis.StakeEngine
	signals     analysis.SignalEngine
	market      analysis.MarketConfidenceEngine
	reliability analysis.ReliabilityTracker
}

// NewSignalPipelineService creates a new signal pipeline service configured
// for the given risk profile
func NewSignalPipelineService(
	repos *repository.Repositories,
	db TxRunner,
	profile config.RiskProfile,
	logger *logrus.Logger,
) *SignalPipelineService {
	return &SignalPipelineService{
		repos:       repos,
		db:          db,
		profile:     profile,
		logger:      logger,
		detector:    analysis.NewValueDetector(profile.MinValueEdge),
		staker:      analysis.NewStakeEngine(profile.KellyFraction, profile.MaxStakePct),
		signals:     analysis.NewSignalEngine(profile.MinValueEdge, profile.MinConfidence),
		market:      analysis.MarketConfidenceEngine{},
		reliability: analysis.ReliabilityTracker{},
	}
}

// matchWrites is one match's pending persistence work, applied by the
// run-level commit.
type matchWrites struct {
	matchID int64
	signals []*models.Signal
	home    float64
	draw    float64
	away    float64
}

// RunAnalysis analyzes every upcoming match and persists the resulting
// signals. Shared inputs (standings, bankroll, pattern stats, streak) are
// loaded once; each match is then isolated so one failure cannot abort the
// run. All writes accumulate across the loop and commit in one transaction
// at the end, so an aborted run leaves no partial batch behind.
func (s *SignalPipelineService) RunAnalysis(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{StartedAt: start}

	matches, err := s.repos.Match.GetUpcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming matches: %w", err)
	}
	report.MatchesTotal = len(matches)
	metrics.UpcomingMatches.Set(float64(len(matches)))

	if len(matches) == 0 {
		s.logger.Info("No upcoming matches to analyze")
		report.Duration = time.Since(start)
		return report, nil
	}

	standings, err := s.repos.Standings.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}

	bankrollEntry, err := s.repos.Bankroll.GetCurrentBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bankroll: %w", err)
	}
	bankroll := bankrollEntry.BalanceFloat()
	metrics.UpdateBankroll(bankroll)

	patternStats, err := s.loadPatternStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern stats: %w", err)
	}

	recentResults, err := s.loadRecentResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent results: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"matches":  len(matches),
		"bankroll": bankroll,
		"profile":  s.profile.Name,
	}).Info("Starting analysis run")

	now := time.Now().UTC()
	var pending []*matchWrites
	for _, match := range matches {
		if !match.IsAnalyzable(now) {
			continue
		}

		outcome, writes := s.analyzeMatch(ctx, match, standings, patternStats, bankroll, recentResults)
		report.Outcomes = append(report.Outcomes, outcome)

		switch outcome.Status {
		case MatchStatusAnalyzed, MatchStatusNoValue:
			pending = append(pending, writes)
			report.SignalsCreated += outcome.SignalCount
			metrics.RecordMatchAnalyzed()
		case MatchStatusAlreadyAnalyzed:
			metrics.RecordMatchSkipped()
		case MatchStatusFailed:
			report.Failures++
			metrics.RecordMatchFailed()
			s.logger.WithError(outcome.Err).WithField("match_id", outcome.MatchID).Error("Match analysis failed")
		}
	}

	if err := s.commitRun(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to commit analysis run: %w", err)
	}

	report.Duration = time.Since(start)
	metrics.RecordAnalysisRun(report.Duration.Seconds())

	s.logger.WithFields(logrus.Fields{
		"signals_created": report.SignalsCreated,
		"failures":        report.Failures,
		"duration":        report.Duration.String(),
	}).Info("Analysis run complete")

	return report, nil
}

// analyzeMatch runs the full pipeline for one match and returns its pending
// writes; nothing is persisted here. A nil writes value accompanies every
// skipped or failed outcome.
func (s *SignalPipelineService) analyzeMatch(
	ctx context.Context,
	match *models.Match,
	standings []*models.StandingSnapshot,
	patternStats map[string]*models.PatternStat,
	bankroll float64,
	recentResults []bool,
) (MatchOutcome, *matchWrites) {
	log := s.logger.WithField("match_id", match.ID)

	existing, err := s.repos.Signal.GetByMatchID(ctx, match.ID)
	if err != nil {
		return MatchOutcome{MatchID: match.ID, Status: MatchStatusFailed, Err: fmt.Errorf("failed to load existing signals: %w", err)}, nil
	}
	// A fully-ranked unresolved set means a completed earlier pass. Unranked
	// rows predate ranked generation; any of them in the set forces a purge
	// and regeneration.
	unresolved, ranked := 0, 0
	for _, sig := range existing {
		if sig.IsResolved() {
			continue
		}
		unresolved++
		if sig.IsRanked() {
			ranked++
		}
	}
	if unresolved > 0 && ranked == unresolved {
		log.Debug("Signals already exist, skipping")
		return MatchOutcome{MatchID: match.ID, Status: MatchStatusAlreadyAnalyzed}, nil
	}

	homeHistory, err := s.repos.Match.GetRecentFinishedByTeam(ctx, match.HomeTeamID, repository.VenueHome, historyLimit)
	if err != nil {
		return MatchOutcome{MatchID: match.ID, Status: MatchStatusFailed, Err: fmt.Errorf("failed to load home history: %w", err)}, nil
	}
	awayHistory, err := s.repos.Match.GetRecentFinishedByTeam(ctx, match.AwayTeamID, repository.VenueAway, historyLimit)
	if err != nil {
		return MatchOutcome{MatchID: match.ID, Status: MatchStatusFailed, Err: fmt.Errorf("failed to load away history: %w", err)}, nil
	}

	fv := analysis.BuildFeatures(match, homeHistory, awayHistory, standings)
	probReport := analysis.CalculateProbabilities(fv)
	patterns := analysis.DetectPatterns(homeHistory, awayHistory, fv)

	oddsHistory, err := s.repos.Odds.GetAllForMatch(ctx, match.ID)
	if err != nil {
		return MatchOutcome{MatchID: match.ID, Status: MatchStatusFailed, Err: fmt.Errorf("failed to load odds: %w", err)}, nil
	}
	var latestOdds *models.OddsSnapshot
	if len(oddsHistory) > 0 {
		latestOdds = oddsHistory[len(oddsHistory)-1]
	}

	candidates := s.detector.EvaluateAllMarkets(probReport, latestOdds, fv)
	selected := analysis.SelectDiverse(candidates, s.profile.MaxPicks)

	var toInsert []*models.Signal
	for _, candidate := range selected {
		signal := s.evaluateCandidate(candidate, probReport, patterns, patternStats, oddsHistory, bankroll, recentResults)
		if signal == nil {
			continue
		}
		signal.MatchID = match.ID
		toInsert = append(toInsert, signal)
	}

	// Rank reflects selection order among survivors, not raw edge
	for i, sig := range toInsert {
		rank := i + 1
		sig.RankInMatch = &rank
	}

	writes := &matchWrites{
		matchID: match.ID,
		signals: toInsert,
		home:    probReport.Get(analysis.OutcomeHome),
		draw:    probReport.Get(analysis.OutcomeDraw),
		away:    probReport.Get(analysis.OutcomeAway),
	}

	if len(toInsert) == 0 {
		log.Debug("No value found")
		return MatchOutcome{MatchID: match.ID, Status: MatchStatusNoValue}, writes
	}

	log.WithField("signals", len(toInsert)).Info("Match analyzed")
	return MatchOutcome{MatchID: match.ID, Status: MatchStatusAnalyzed, SignalCount: len(toInsert)}, writes
}

// commitRun persists every analyzed match's writes in one transaction: stale
// unresolved signals are purged for each, new ranked signals inserted, and
// model probabilities cached only for matches that produced signals.
func (s *SignalPipelineService) commitRun(ctx context.Context, pending []*matchWrites) error {
	if len(pending) == 0 {
		return nil
	}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, w := range pending {
			if err := s.repos.Signal.DeleteUnresolvedForMatchTx(ctx, tx, w.matchID); err != nil {
				return fmt.Errorf("failed to clear stale signals for match %d: %w", w.matchID, err)
			}
			for _, sig := range w.signals {
				if err := s.repos.Signal.CreateTx(ctx, tx, sig); err != nil {
					return fmt.Errorf("failed to create signal for match %d: %w", w.matchID, err)
				}
			}
			if len(w.signals) == 0 {
				continue
			}
			if err := s.repos.Match.CachePredictionsTx(ctx, tx, w.matchID, w.home, w.draw, w.away); err != nil {
				return fmt.Errorf("failed to cache predictions for match %d: %w", w.matchID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, w := range pending {
		for range w.signals {
			metrics.RecordSignal(string(models.SignalDecisionBet))
		}
	}
	return nil
}

// evaluateCandidate scores one market candidate through reliability, market
// confidence and staking, returning a signal only for a BET decision
func (s *SignalPipelineService) evaluateCandidate(
	candidate analysis.MarketCandidate,
	probReport analysis.ProbabilityReport,
	patterns []analysis.Pattern,
	patternStats map[string]*models.PatternStat,
	oddsHistory []*models.OddsSnapshot,
	bankroll float64,
	recentResults []bool,
) *models.Signal {
	var relevant []analysis.Pattern
	var relevantStats []*models.PatternStat
	for _, p := range patterns {
		if !p.AppliesTo(candidate.BetType) {
			continue
		}
		relevant = append(relevant, p)
		if stat, ok := patternStats[p.Name]; ok {
			relevantStats = append(relevantStats, stat)
		}
	}

	confidence := s.reliability.AdjustConfidence(candidate.PredictedProb, relevantStats)
	confidence = math.Min(1.0, confidence+patternBoostPerHit*float64(len(relevant)))

	marketConfidence := s.market.GetScore(candidate.BetType, oddsHistory)

	stake := s.staker.CalculateKellyStake(bankroll, candidate.Odds, candidate.PredictedProb)
	stake = s.staker.AdjustForStreak(stake, recentResults)

	decision := s.signals.GenerateFinalDecision(
		probReport, candidate.Edge, confidence, stake,
		candidate.BetType, relevant, marketConfidence,
	)
	if decision.Decision != models.SignalDecisionBet {
		return nil
	}

	names := make([]string, len(relevant))
	for i, p := range relevant {
		names[i] = p.Name
	}

	return &models.Signal{
		ID:               uuid.New(),
		CreatedAt:        time.Now().UTC(),
		MarketKey:        candidate.MarketKey,
		SuggestedBet:     candidate.BetType,
		PredictedProb:    candidate.PredictedProb,
		ImpliedProb:      candidate.ImpliedProb,
		ValueEdge:        decision.Edge,
		BookmakerOdds:    candidate.Odds,
		HasLiveOdds:      candidate.HasBookmakerOdds,
		ConfidenceScore:  decision.Confidence,
		MarketConfidence: decision.MarketConfidence,
		ConsistencyPct:   candidate.Consistency,
		RecommendedStake: decision.Stake,
		ExpectedOutcome:  decision.ExpectedOutcome,
		PatternsDetected: strings.Join(names, ","),
		Explanation:      decision.Explanation,
	}
}

// loadPatternStats indexes all persisted pattern aggregates by name
func (s *SignalPipelineService) loadPatternStats(ctx context.Context) (map[string]*models.PatternStat, error) {
	stats, err := s.repos.PatternStat.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	indexed := make(map[string]*models.PatternStat, len(stats))
	for _, stat := range stats {
		indexed[stat.PatternName] = stat
		metrics.UpdatePatternReliability(stat.PatternName, stat.ReliabilityScore)
	}
	return indexed, nil
}

// loadRecentResults returns the win/loss run of the latest settled signals,
// oldest first, for streak-based stake adjustment
func (s *SignalPipelineService) loadRecentResults(ctx context.Context) ([]bool, error) {
	resolved, err := s.repos.Signal.GetRecentResolved(ctx, streakLookback)
	if err != nil {
		return nil, err
	}
	results := make([]bool, 0, len(resolved))
	for _, sig := range resolved {
		if sig.ResultWon != nil {
			results = append(results, *sig.ResultWon)
		}
	}
	return results, nil
}
