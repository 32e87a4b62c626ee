package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

// fakeTxRunner runs the transaction function directly with a nil tx and
// counts how many transactions were opened
type fakeTxRunner struct {
	err   error
	calls int
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// MockMatchRepository mocks match data access
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockMatchRepository) GetUpcoming(ctx context.Context) ([]*models.Match, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

func (m *MockMatchRepository) GetRecentFinishedByTeam(ctx context.Context, teamID int64, venue repository.Venue, limit int) ([]*models.Match, error) {
	args := m.Called(ctx, teamID, venue, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

func (m *MockMatchRepository) GetFinishedWithUnresolvedSignals(ctx context.Context) ([]*models.Match, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

func (m *MockMatchRepository) CachePredictionsTx(ctx context.Context, tx pgx.Tx, matchID int64, home, draw, away float64) error {
	args := m.Called(ctx, tx, matchID, home, draw, away)
	return args.Error(0)
}

// MockTeamRepository mocks team data access
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Upsert(ctx context.Context, team *models.Team) (*models.Team, error) {
	args := m.Called(ctx, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.Team, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

// MockStandingsRepository mocks league table access
type MockStandingsRepository struct {
	mock.Mock
}

func (m *MockStandingsRepository) Replace(ctx context.Context, standings []*models.StandingSnapshot) error {
	args := m.Called(ctx, standings)
	return args.Error(0)
}

func (m *MockStandingsRepository) GetLatest(ctx context.Context) ([]*models.StandingSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StandingSnapshot), args.Error(1)
}

// MockOddsRepository mocks odds snapshot access
type MockOddsRepository struct {
	mock.Mock
}

func (m *MockOddsRepository) Insert(ctx context.Context, odds *models.OddsSnapshot) error {
	args := m.Called(ctx, odds)
	return args.Error(0)
}

func (m *MockOddsRepository) GetLatestForMatch(ctx context.Context, matchID int64) (*models.OddsSnapshot, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OddsSnapshot), args.Error(1)
}

func (m *MockOddsRepository) GetAllForMatch(ctx context.Context, matchID int64) ([]*models.OddsSnapshot, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OddsSnapshot), args.Error(1)
}

// MockSignalRepository mocks signal persistence
type MockSignalRepository struct {
	mock.Mock
}

func (m *MockSignalRepository) GetByMatchID(ctx context.Context, matchID int64) ([]*models.Signal, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Signal), args.Error(1)
}

func (m *MockSignalRepository) GetLatest(ctx context.Context, limit int) ([]*models.Signal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Signal), args.Error(1)
}

func (m *MockSignalRepository) GetRecentResolved(ctx context.Context, limit int) ([]*models.Signal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Signal), args.Error(1)
}

func (m *MockSignalRepository) SetResult(ctx context.Context, id string, won bool) error {
	args := m.Called(ctx, id, won)
	return args.Error(0)
}

func (m *MockSignalRepository) MarkPublished(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockSignalRepository) CreateTx(ctx context.Context, tx pgx.Tx, signal *models.Signal) error {
	args := m.Called(ctx, tx, signal)
	return args.Error(0)
}

func (m *MockSignalRepository) DeleteUnresolvedForMatchTx(ctx context.Context, tx pgx.Tx, matchID int64) error {
	args := m.Called(ctx, tx, matchID)
	return args.Error(0)
}

// MockPatternStatRepository mocks pattern reliability stats
type MockPatternStatRepository struct {
	mock.Mock
}

func (m *MockPatternStatRepository) GetByName(ctx context.Context, name string) (*models.PatternStat, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatternStat), args.Error(1)
}

func (m *MockPatternStatRepository) GetAll(ctx context.Context) ([]*models.PatternStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PatternStat), args.Error(1)
}

func (m *MockPatternStatRepository) RecordOutcome(ctx context.Context, name string, won bool) (*models.PatternStat, error) {
	args := m.Called(ctx, name, won)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatternStat), args.Error(1)
}

// MockBankrollRepository mocks the bankroll ledger
type MockBankrollRepository struct {
	mock.Mock
}

func (m *MockBankrollRepository) GetCurrentBalance(ctx context.Context) (*models.BankrollEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankrollEntry), args.Error(1)
}

func (m *MockBankrollRepository) GetHistory(ctx context.Context, limit int) ([]*models.BankrollEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollEntry), args.Error(1)
}

func (m *MockBankrollRepository) Append(ctx context.Context, entry *models.BankrollEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBankrollRepository) InitializeIfEmpty(ctx context.Context, initialBalance decimal.Decimal) error {
	args := m.Called(ctx, initialBalance)
	return args.Error(0)
}
