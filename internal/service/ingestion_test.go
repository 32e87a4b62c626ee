package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/mister-predictor/internal/datasource"
	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

// stubFixtureProvider serves canned matches and standings
type stubFixtureProvider struct {
	matches   []datasource.MatchData
	standings []datasource.StandingData
	err       error
}

func (s *stubFixtureProvider) FetchMatches(ctx context.Context, dateFrom, dateTo time.Time) ([]datasource.MatchData, error) {
	return s.matches, s.err
}

func (s *stubFixtureProvider) FetchStandings(ctx context.Context) ([]datasource.StandingData, error) {
	return s.standings, s.err
}

func (s *stubFixtureProvider) Name() string { return "stub-fixtures" }

// stubOddsProvider serves canned odds events
type stubOddsProvider struct {
	events []datasource.OddsData
	err    error
}

func (s *stubOddsProvider) FetchOdds(ctx context.Context) ([]datasource.OddsData, error) {
	return s.events, s.err
}

func (s *stubOddsProvider) Name() string { return "stub-odds" }

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Arsenal FC", "arsenal"},
		{"AFC Bournemouth", "bournemouth"},
		{"Wolverhampton Wanderers FC", "wolverhampton wanderers"},
		{"  Liverpool FC  ", "liverpool"},
		{"Brighton & Hove Albion", "brighton & hove albion"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeTeamName(tt.in))
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, models.MatchStatusScheduled, normalizeStatus("SCHEDULED"))
	assert.Equal(t, models.MatchStatusTimed, normalizeStatus("TIMED"))
	assert.Equal(t, models.MatchStatusInPlay, normalizeStatus("IN_PLAY"))
	assert.Equal(t, models.MatchStatusInPlay, normalizeStatus("PAUSED"))
	assert.Equal(t, models.MatchStatusFinished, normalizeStatus("FINISHED"))
	assert.Equal(t, models.MatchStatusPostponed, normalizeStatus("SUSPENDED"))
	assert.Equal(t, models.MatchStatusPostponed, normalizeStatus(""))
}

func TestSyncMatchesUpsertsTeamsAndMatches(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	teamRepo := new(MockTeamRepository)

	kickoff := time.Now().UTC().Add(72 * time.Hour)
	fixtures := &stubFixtureProvider{matches: []datasource.MatchData{
		{
			SourceID:    5001,
			Season:      "2025/26",
			Matchday:    3,
			KickoffTime: kickoff,
			Status:      "TIMED",
			HomeTeam:    datasource.TeamData{SourceID: 57, Name: "Arsenal FC"},
			AwayTeam:    datasource.TeamData{SourceID: 61, Name: "Chelsea FC"},
		},
	}}

	teamRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(team *models.Team) bool {
		return team.ExternalID == 57
	})).Return(&models.Team{ID: 1, ExternalID: 57, Name: "Arsenal FC"}, nil)
	teamRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(team *models.Team) bool {
		return team.ExternalID == 61
	})).Return(&models.Team{ID: 2, ExternalID: 61, Name: "Chelsea FC"}, nil)

	var upserted *models.Match
	matchRepo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = args.Get(1).(*models.Match)
	}).Return(nil)

	svc := NewIngestionService(fixtures, &stubOddsProvider{}, &repository.Repositories{
		Match: matchRepo,
		Team:  teamRepo,
	}, testLogger())

	err := svc.SyncMatches(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, upserted)
	assert.Equal(t, int64(5001), upserted.ExternalID)
	assert.Equal(t, models.MatchStatusTimed, upserted.Status)
	assert.Equal(t, int64(1), upserted.HomeTeamID)
	assert.Equal(t, int64(2), upserted.AwayTeamID)
	assert.Equal(t, 3, *upserted.Matchday)
	assert.Equal(t, "2025/26", *upserted.Season)
}

func TestSyncStandingsSkipsUnknownTeams(t *testing.T) {
	teamRepo := new(MockTeamRepository)
	standingsRepo := new(MockStandingsRepository)

	fixtures := &stubFixtureProvider{standings: []datasource.StandingData{
		{TeamSourceID: 57, Position: 1, Points: 30},
		{TeamSourceID: 999, Position: 2, Points: 28},
	}}

	teamRepo.On("GetByExternalID", mock.Anything, int64(57)).Return(&models.Team{ID: 1, ExternalID: 57}, nil)
	teamRepo.On("GetByExternalID", mock.Anything, int64(999)).Return(nil, assert.AnError)

	var replaced []*models.StandingSnapshot
	standingsRepo.On("Replace", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		replaced = args.Get(1).([]*models.StandingSnapshot)
	}).Return(nil)

	svc := NewIngestionService(fixtures, &stubOddsProvider{}, &repository.Repositories{
		Team:      teamRepo,
		Standings: standingsRepo,
	}, testLogger())

	err := svc.SyncStandings(context.Background())

	assert.NoError(t, err)
	assert.Len(t, replaced, 1)
	assert.Equal(t, int64(1), replaced[0].TeamID)
	assert.Equal(t, 1, replaced[0].Position)
}

func TestSyncStandingsFailsWhenNothingResolves(t *testing.T) {
	teamRepo := new(MockTeamRepository)

	fixtures := &stubFixtureProvider{standings: []datasource.StandingData{
		{TeamSourceID: 999, Position: 1},
	}}
	teamRepo.On("GetByExternalID", mock.Anything, int64(999)).Return(nil, assert.AnError)

	svc := NewIngestionService(fixtures, &stubOddsProvider{}, &repository.Repositories{
		Team: teamRepo,
	}, testLogger())

	err := svc.SyncStandings(context.Background())

	assert.Error(t, err)
}

func TestSyncOddsMatchesEventsToFixtures(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	teamRepo := new(MockTeamRepository)
	oddsRepo := new(MockOddsRepository)

	kickoff := time.Now().UTC().Add(24 * time.Hour)
	fixture := &models.Match{
		ID:         7,
		Status:     models.MatchStatusTimed,
		UTCDate:    kickoff,
		HomeTeamID: 1,
		AwayTeamID: 2,
	}

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{fixture}, nil)
	teamRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Team{ID: 1, Name: "Arsenal FC"}, nil)
	teamRepo.On("GetByID", mock.Anything, int64(2)).Return(&models.Team{ID: 2, Name: "Chelsea FC"}, nil)

	odds := &stubOddsProvider{events: []datasource.OddsData{
		{
			// Odds feed drops the FC suffixes and disagrees on kickoff by
			// a few minutes
			HomeTeamName: "Arsenal",
			AwayTeamName: "Chelsea",
			KickoffTime:  kickoff.Add(15 * time.Minute),
			Bookmaker:    "bet365",
			HomeWin:      floatPtr(2.1),
			Draw:         floatPtr(3.4),
			AwayWin:      floatPtr(3.6),
			Over25:       floatPtr(1.85),
			Under25:      floatPtr(1.95),
		},
		{
			// No stored fixture for this pairing
			HomeTeamName: "Everton",
			AwayTeamName: "Fulham",
			KickoffTime:  kickoff,
		},
	}}

	var inserted *models.OddsSnapshot
	oddsRepo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(*models.OddsSnapshot)
	}).Return(nil)

	svc := NewIngestionService(&stubFixtureProvider{}, odds, &repository.Repositories{
		Match: matchRepo,
		Team:  teamRepo,
		Odds:  oddsRepo,
	}, testLogger())

	err := svc.SyncOdds(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, inserted)
	assert.Equal(t, int64(7), inserted.MatchID)
	assert.Equal(t, "bet365", inserted.Bookmaker)
	assert.Equal(t, 2.1, *inserted.HomeOdds)
	assert.Equal(t, 1.85, *inserted.Over25Odds)
	oddsRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestSyncOddsRejectsKickoffOutsideTolerance(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	teamRepo := new(MockTeamRepository)
	oddsRepo := new(MockOddsRepository)

	kickoff := time.Now().UTC().Add(24 * time.Hour)
	fixture := &models.Match{ID: 7, UTCDate: kickoff, HomeTeamID: 1, AwayTeamID: 2}

	matchRepo.On("GetUpcoming", mock.Anything).Return([]*models.Match{fixture}, nil)
	teamRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Team{ID: 1, Name: "Arsenal FC"}, nil)
	teamRepo.On("GetByID", mock.Anything, int64(2)).Return(&models.Team{ID: 2, Name: "Chelsea FC"}, nil)

	// Same pairing a week earlier must not receive this snapshot
	odds := &stubOddsProvider{events: []datasource.OddsData{
		{HomeTeamName: "Arsenal", AwayTeamName: "Chelsea", KickoffTime: kickoff.Add(-7 * 24 * time.Hour)},
	}}

	svc := NewIngestionService(&stubFixtureProvider{}, odds, &repository.Repositories{
		Match: matchRepo,
		Team:  teamRepo,
		Odds:  oddsRepo,
	}, testLogger())

	err := svc.SyncOdds(context.Background())

	assert.NoError(t, err)
	oddsRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
