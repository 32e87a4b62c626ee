package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/mister-predictor/internal/config"
	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func upcomingMatch(id int64) *models.Match {
	return &models.Match{
		ID:         id,
		Status:     models.MatchStatusScheduled,
		UTCDate:    time.Now().UTC().Add(48 * time.Hour),
		HomeTeamID: 10,
		AwayTeamID: 20,
	}
}

func finishedMatch(homeScore, awayScore int) *models.Match {
	return &models.Match{
		Status:    models.MatchStatusFinished,
		HomeScore: intPtr(homeScore),
		AwayScore: intPtr(awayScore),
	}
}

// homeRout builds a history of emphatic home wins for the home side and the
// mirror-image defeats for the travelling side
func homeRout(n int) []*models.Match {
	history := make([]*models.Match, n)
	for i := range history {
		history[i] = finishedMatch(3, 0)
	}
	return history
}

// strongScenario wires the mocks for a match whose history and odds are
// lopsided enough to guarantee at least one generated signal
func strongScenario(matchRepo *MockMatchRepository, oddsRepo *MockOddsRepository, matchID int64) {
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(10), repository.VenueHome, 10).Return(homeRout(5), nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(20), repository.VenueAway, 10).Return(homeRout(5), nil)
	oddsRepo.On("GetAllForMatch", mock.Anything, matchID).Return([]*models.OddsSnapshot{
		{MatchID: matchID, HomeOdds: floatPtr(2.0), DrawOdds: floatPtr(3.5), AwayOdds: floatPtr(4.0)},
	}, nil)
}

func TestRunAnalysisWithNoUpcomingMatches(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{}, nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{Match: matchRepo},
		&fakeTxRunner{},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	report, err := svc.RunAnalysis(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, report.MatchesTotal)
	assert.Empty(t, report.Outcomes)
	matchRepo.AssertExpectations(t)
}

func TestRunAnalysisPropagatesLoadErrors(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	matchRepo.On("GetUpcoming", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := NewSignalPipelineService(
		&repository.Repositories{Match: matchRepo},
		&fakeTxRunner{},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	_, err := svc.RunAnalysis(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "upcoming matches")
}

func TestAnalyzeMatchSkipsWhenRankedSignalsExist(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)

	existing := &models.Signal{RankInMatch: intPtr(1)}
	signalRepo.On("GetByMatchID", mock.Anything, int64(1)).Return([]*models.Signal{existing}, nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{Match: matchRepo, Signal: signalRepo},
		&fakeTxRunner{},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	outcome, writes := svc.analyzeMatch(context.Background(), upcomingMatch(1), nil, nil, 1000, nil)

	assert.Equal(t, MatchStatusAlreadyAnalyzed, outcome.Status)
	assert.Nil(t, writes)
	matchRepo.AssertNotCalled(t, "GetRecentFinishedByTeam")
}

func TestAnalyzeMatchRegeneratesSettledMatches(t *testing.T) {
	// A ranked but resolved signal no longer blocks regeneration
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)

	existing := &models.Signal{RankInMatch: intPtr(1), ResultWon: boolPtr(true)}
	signalRepo.On("GetByMatchID", mock.Anything, int64(2)).Return([]*models.Signal{existing}, nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(10), repository.VenueHome, 10).Return([]*models.Match{}, nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(20), repository.VenueAway, 10).Return([]*models.Match{}, nil)
	oddsRepo.On("GetAllForMatch", mock.Anything, int64(2)).Return([]*models.OddsSnapshot{}, nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{Match: matchRepo, Signal: signalRepo, Odds: oddsRepo},
		&fakeTxRunner{},
		config.ProfileByName("conservative"),
		testLogger(),
	)

	outcome, writes := svc.analyzeMatch(context.Background(), upcomingMatch(2), nil, nil, 1000, nil)

	assert.NotEqual(t, MatchStatusAlreadyAnalyzed, outcome.Status)
	assert.NotNil(t, writes)
	matchRepo.AssertCalled(t, "GetRecentFinishedByTeam", mock.Anything, int64(10), repository.VenueHome, 10)
}

func TestAnalyzeMatchRegeneratesPartiallyRankedSets(t *testing.T) {
	// A mix of ranked and unranked unresolved rows is not a completed pass;
	// only a fully-ranked unresolved set blocks regeneration
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)

	existing := []*models.Signal{
		{RankInMatch: intPtr(1)},
		{RankInMatch: nil},
	}
	signalRepo.On("GetByMatchID", mock.Anything, int64(3)).Return(existing, nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(10), repository.VenueHome, 10).Return([]*models.Match{}, nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(20), repository.VenueAway, 10).Return([]*models.Match{}, nil)
	oddsRepo.On("GetAllForMatch", mock.Anything, int64(3)).Return([]*models.OddsSnapshot{}, nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{Match: matchRepo, Signal: signalRepo, Odds: oddsRepo},
		&fakeTxRunner{},
		config.ProfileByName("conservative"),
		testLogger(),
	)

	outcome, writes := svc.analyzeMatch(context.Background(), upcomingMatch(3), nil, nil, 1000, nil)

	assert.NotEqual(t, MatchStatusAlreadyAnalyzed, outcome.Status)
	assert.NotNil(t, writes)
}

func TestAnalyzeMatchCreatesRankedSignals(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)

	// Dominant home side, hopeless visitor, and a generously priced home win
	signalRepo.On("GetByMatchID", mock.Anything, int64(4)).Return([]*models.Signal{}, nil)
	strongScenario(matchRepo, oddsRepo, 4)

	svc := NewSignalPipelineService(
		&repository.Repositories{Match: matchRepo, Signal: signalRepo, Odds: oddsRepo},
		&fakeTxRunner{},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	outcome, writes := svc.analyzeMatch(context.Background(), upcomingMatch(4), nil, map[string]*models.PatternStat{}, 1000, nil)

	assert.Equal(t, MatchStatusAnalyzed, outcome.Status)
	assert.NotNil(t, writes)
	assert.Equal(t, len(writes.signals), outcome.SignalCount)
	assert.NotEmpty(t, writes.signals)

	var betTypes []string
	for i, sig := range writes.signals {
		betTypes = append(betTypes, sig.SuggestedBet)
		assert.Equal(t, int64(4), sig.MatchID)
		assert.NotNil(t, sig.RankInMatch)
		assert.Equal(t, i+1, *sig.RankInMatch)
		assert.Greater(t, sig.RecommendedStake, 0.0)
		assert.NotEmpty(t, sig.Explanation)
	}
	assert.Contains(t, betTypes, "HOME_WIN")
}

func TestRunAnalysisRegeneratesLegacyUnrankedSignals(t *testing.T) {
	// An unranked, unresolved row predates ranked generation: re-running
	// purges it and persists a fresh, fully-ranked set
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)
	standingsRepo := new(MockStandingsRepository)
	patternRepo := new(MockPatternStatRepository)
	bankrollRepo := new(MockBankrollRepository)

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{upcomingMatch(5)}, nil)
	standingsRepo.On("GetLatest", mock.Anything).Return([]*models.StandingSnapshot{}, nil)
	bankrollRepo.On("GetCurrentBalance", mock.Anything).Return(&models.BankrollEntry{Balance: decimal.NewFromInt(1000)}, nil)
	patternRepo.On("GetAll", mock.Anything).Return([]*models.PatternStat{}, nil)
	signalRepo.On("GetRecentResolved", mock.Anything, 10).Return([]*models.Signal{}, nil)

	legacy := &models.Signal{RankInMatch: nil}
	signalRepo.On("GetByMatchID", mock.Anything, int64(5)).Return([]*models.Signal{legacy}, nil)
	strongScenario(matchRepo, oddsRepo, 5)

	var created []*models.Signal
	signalRepo.On("DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(5)).Return(nil)
	signalRepo.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = append(created, args.Get(2).(*models.Signal))
	}).Return(nil)
	matchRepo.On("CachePredictionsTx", mock.Anything, mock.Anything, int64(5), mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{
			Match:       matchRepo,
			Standings:   standingsRepo,
			Odds:        oddsRepo,
			Signal:      signalRepo,
			PatternStat: patternRepo,
			Bankroll:    bankrollRepo,
		},
		&fakeTxRunner{},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	report, err := svc.RunAnalysis(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, MatchStatusAnalyzed, report.Outcomes[0].Status)
	signalRepo.AssertCalled(t, "DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(5))
	assert.NotEmpty(t, created)
	for i, sig := range created {
		assert.NotNil(t, sig.RankInMatch)
		assert.Equal(t, i+1, *sig.RankInMatch)
	}
}

func TestRunAnalysisSkipsPredictionCacheWithoutSignals(t *testing.T) {
	// Neutral priors and no bookmaker odds: nothing clears the conservative
	// confidence bar. Stale rows are still purged but no predictions are
	// cached for a match that produced no signals
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)
	standingsRepo := new(MockStandingsRepository)
	patternRepo := new(MockPatternStatRepository)
	bankrollRepo := new(MockBankrollRepository)

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{upcomingMatch(6)}, nil)
	standingsRepo.On("GetLatest", mock.Anything).Return([]*models.StandingSnapshot{}, nil)
	bankrollRepo.On("GetCurrentBalance", mock.Anything).Return(&models.BankrollEntry{Balance: decimal.NewFromInt(1000)}, nil)
	patternRepo.On("GetAll", mock.Anything).Return([]*models.PatternStat{}, nil)
	signalRepo.On("GetRecentResolved", mock.Anything, 10).Return([]*models.Signal{}, nil)

	signalRepo.On("GetByMatchID", mock.Anything, int64(6)).Return([]*models.Signal{}, nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(10), repository.VenueHome, 10).Return([]*models.Match{}, nil)
	matchRepo.On("GetRecentFinishedByTeam", mock.Anything, int64(20), repository.VenueAway, 10).Return([]*models.Match{}, nil)
	oddsRepo.On("GetAllForMatch", mock.Anything, int64(6)).Return([]*models.OddsSnapshot{}, nil)
	signalRepo.On("DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(6)).Return(nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{
			Match:       matchRepo,
			Standings:   standingsRepo,
			Odds:        oddsRepo,
			Signal:      signalRepo,
			PatternStat: patternRepo,
			Bankroll:    bankrollRepo,
		},
		&fakeTxRunner{},
		config.ProfileByName("conservative"),
		testLogger(),
	)

	report, err := svc.RunAnalysis(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, MatchStatusNoValue, report.Outcomes[0].Status)
	assert.Equal(t, 0, report.SignalsCreated)
	signalRepo.AssertCalled(t, "DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(6))
	signalRepo.AssertNotCalled(t, "CreateTx")
	matchRepo.AssertNotCalled(t, "CachePredictionsTx")
}

func TestRunAnalysisFailsWhenCommitFails(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)
	standingsRepo := new(MockStandingsRepository)
	patternRepo := new(MockPatternStatRepository)
	bankrollRepo := new(MockBankrollRepository)

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{upcomingMatch(7)}, nil)
	standingsRepo.On("GetLatest", mock.Anything).Return([]*models.StandingSnapshot{}, nil)
	bankrollRepo.On("GetCurrentBalance", mock.Anything).Return(&models.BankrollEntry{Balance: decimal.NewFromInt(1000)}, nil)
	patternRepo.On("GetAll", mock.Anything).Return([]*models.PatternStat{}, nil)
	signalRepo.On("GetRecentResolved", mock.Anything, 10).Return([]*models.Signal{}, nil)
	signalRepo.On("GetByMatchID", mock.Anything, int64(7)).Return([]*models.Signal{}, nil)
	strongScenario(matchRepo, oddsRepo, 7)

	svc := NewSignalPipelineService(
		&repository.Repositories{
			Match:       matchRepo,
			Standings:   standingsRepo,
			Odds:        oddsRepo,
			Signal:      signalRepo,
			PatternStat: patternRepo,
			Bankroll:    bankrollRepo,
		},
		&fakeTxRunner{err: errors.New("deadlock detected")},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	_, err := svc.RunAnalysis(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
}

func TestRunAnalysisCommitsOnceAcrossMatches(t *testing.T) {
	// The whole run's writes land in a single transaction, not one per match
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)
	standingsRepo := new(MockStandingsRepository)
	patternRepo := new(MockPatternStatRepository)
	bankrollRepo := new(MockBankrollRepository)

	first := upcomingMatch(8)
	second := upcomingMatch(9)

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{first, second}, nil)
	standingsRepo.On("GetLatest", mock.Anything).Return([]*models.StandingSnapshot{}, nil)
	bankrollRepo.On("GetCurrentBalance", mock.Anything).Return(&models.BankrollEntry{Balance: decimal.NewFromInt(1000)}, nil)
	patternRepo.On("GetAll", mock.Anything).Return([]*models.PatternStat{}, nil)
	signalRepo.On("GetRecentResolved", mock.Anything, 10).Return([]*models.Signal{}, nil)

	signalRepo.On("GetByMatchID", mock.Anything, int64(8)).Return([]*models.Signal{}, nil)
	signalRepo.On("GetByMatchID", mock.Anything, int64(9)).Return([]*models.Signal{}, nil)
	strongScenario(matchRepo, oddsRepo, 8)
	oddsRepo.On("GetAllForMatch", mock.Anything, int64(9)).Return([]*models.OddsSnapshot{
		{MatchID: 9, HomeOdds: floatPtr(2.0), DrawOdds: floatPtr(3.5), AwayOdds: floatPtr(4.0)},
	}, nil)

	signalRepo.On("DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	signalRepo.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	matchRepo.On("CachePredictionsTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	tx := &fakeTxRunner{}
	svc := NewSignalPipelineService(
		&repository.Repositories{
			Match:       matchRepo,
			Standings:   standingsRepo,
			Odds:        oddsRepo,
			Signal:      signalRepo,
			PatternStat: patternRepo,
			Bankroll:    bankrollRepo,
		},
		tx,
		config.ProfileByName("balanced"),
		testLogger(),
	)

	report, err := svc.RunAnalysis(context.Background())

	assert.NoError(t, err)
	assert.Len(t, report.Outcomes, 2)
	assert.Equal(t, 1, tx.calls)
	signalRepo.AssertCalled(t, "DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(8))
	signalRepo.AssertCalled(t, "DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(9))
}

func TestRunAnalysisEndToEnd(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	signalRepo := new(MockSignalRepository)
	oddsRepo := new(MockOddsRepository)
	standingsRepo := new(MockStandingsRepository)
	patternRepo := new(MockPatternStatRepository)
	bankrollRepo := new(MockBankrollRepository)

	analyzable := upcomingMatch(10)
	stale := upcomingMatch(11)
	stale.UTCDate = time.Now().UTC().Add(-2 * time.Hour)

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{analyzable, stale}, nil)
	standingsRepo.On("GetLatest", mock.Anything).Return([]*models.StandingSnapshot{}, nil)
	bankrollRepo.On("GetCurrentBalance", mock.Anything).Return(&models.BankrollEntry{Balance: decimal.NewFromInt(1000)}, nil)
	patternRepo.On("GetAll", mock.Anything).Return([]*models.PatternStat{}, nil)
	signalRepo.On("GetRecentResolved", mock.Anything, 10).Return([]*models.Signal{}, nil)

	signalRepo.On("GetByMatchID", mock.Anything, int64(10)).Return([]*models.Signal{}, nil)
	strongScenario(matchRepo, oddsRepo, 10)
	signalRepo.On("DeleteUnresolvedForMatchTx", mock.Anything, mock.Anything, int64(10)).Return(nil)
	signalRepo.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	matchRepo.On("CachePredictionsTx", mock.Anything, mock.Anything, int64(10), mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewSignalPipelineService(
		&repository.Repositories{
			Match:       matchRepo,
			Standings:   standingsRepo,
			Odds:        oddsRepo,
			Signal:      signalRepo,
			PatternStat: patternRepo,
			Bankroll:    bankrollRepo,
		},
		&fakeTxRunner{},
		config.ProfileByName("balanced"),
		testLogger(),
	)

	report, err := svc.RunAnalysis(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, report.MatchesTotal)
	// The stale fixture is filtered before analysis
	assert.Len(t, report.Outcomes, 1)
	assert.Equal(t, MatchStatusAnalyzed, report.Outcomes[0].Status)
	assert.Greater(t, report.SignalsCreated, 0)
	assert.Equal(t, 0, report.Failures)

	signalRepo.AssertNotCalled(t, "GetByMatchID", mock.Anything, int64(11))
}
