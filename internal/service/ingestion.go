package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/datasource"
	"github.com/yourusername/mister-predictor/internal/metrics"
	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

// Ingestion window relative to now
const (
	resultsLookbackDays = 7
	fixturesAheadDays   = 14

	// Odds events are matched to fixtures by team name and kickoff; kickoffs
	// from the two providers can disagree by a few minutes.
	kickoffMatchTolerance = 2 * time.Hour
)

// IngestionService syncs matches, standings and odds from the external
// providers into the local store
type IngestionService struct {
	fixtures datasource.FixtureProvider
	odds     datasource.OddsProvider
	repos    *repository.Repositories
	logger   *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	fixtures datasource.FixtureProvider,
	odds datasource.OddsProvider,
	repos *repository.Repositories,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		fixtures: fixtures,
		odds:     odds,
		repos:    repos,
		logger:   logger,
	}
}

// SyncAll refreshes matches, standings and odds in that order. Matches must
// land first so standings and odds can resolve team and match rows.
func (s *IngestionService) SyncAll(ctx context.Context) error {
	if err := s.SyncMatches(ctx); err != nil {
		return fmt.Errorf("match sync failed: %w", err)
	}
	if err := s.SyncStandings(ctx); err != nil {
		return fmt.Errorf("standings sync failed: %w", err)
	}
	if err := s.SyncOdds(ctx); err != nil {
		return fmt.Errorf("odds sync failed: %w", err)
	}
	return nil
}

// SyncMatches fetches recent results and upcoming fixtures and upserts them
// along with their teams
func (s *IngestionService) SyncMatches(ctx context.Context) error {
	now := time.Now().UTC()
	dateFrom := now.AddDate(0, 0, -resultsLookbackDays)
	dateTo := now.AddDate(0, 0, fixturesAheadDays)

	fetched, err := s.fixtures.FetchMatches(ctx, dateFrom, dateTo)
	if err != nil {
		metrics.RecordIngestionError(s.fixtures.Name())
		return err
	}

	var upserted int
	for _, md := range fetched {
		homeTeam, err := s.upsertTeam(ctx, md.HomeTeam)
		if err != nil {
			s.logger.WithError(err).WithField("team", md.HomeTeam.Name).Warn("Failed to upsert home team")
			continue
		}
		awayTeam, err := s.upsertTeam(ctx, md.AwayTeam)
		if err != nil {
			s.logger.WithError(err).WithField("team", md.AwayTeam.Name).Warn("Failed to upsert away team")
			continue
		}

		match := &models.Match{
			ExternalID:  md.SourceID,
			UTCDate:     md.KickoffTime,
			Status:      normalizeStatus(md.Status),
			HomeTeamID:  homeTeam.ID,
			AwayTeamID:  awayTeam.ID,
			HomeScore:   md.HomeScore,
			AwayScore:   md.AwayScore,
			HomeHTScore: md.HalfTimeHomeScore,
			AwayHTScore: md.HalfTimeAwayScore,
		}
		if md.Matchday > 0 {
			matchday := md.Matchday
			match.Matchday = &matchday
		}
		if md.Season != "" {
			season := md.Season
			match.Season = &season
		}

		if err := s.repos.Match.Upsert(ctx, match); err != nil {
			s.logger.WithError(err).WithField("external_id", md.SourceID).Warn("Failed to upsert match")
			continue
		}
		upserted++
	}

	s.logger.WithFields(logrus.Fields{
		"fetched":  len(fetched),
		"upserted": upserted,
	}).Info("Match sync complete")
	return nil
}

// SyncStandings replaces the stored league table snapshot
func (s *IngestionService) SyncStandings(ctx context.Context) error {
	rows, err := s.fixtures.FetchStandings(ctx)
	if err != nil {
		metrics.RecordIngestionError(s.fixtures.Name())
		return err
	}

	snapshots := make([]*models.StandingSnapshot, 0, len(rows))
	for _, row := range rows {
		team, err := s.repos.Team.GetByExternalID(ctx, row.TeamSourceID)
		if err != nil {
			s.logger.WithError(err).WithField("team_source_id", row.TeamSourceID).Warn("Standings row for unknown team")
			continue
		}
		snapshots = append(snapshots, &models.StandingSnapshot{
			TeamID:       team.ID,
			Position:     row.Position,
			Played:       row.PlayedGames,
			Points:       row.Points,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			GoalDiff:     row.GoalDifference,
		})
	}

	if len(snapshots) == 0 {
		return fmt.Errorf("no standings rows could be resolved to teams")
	}

	if err := s.repos.Standings.Replace(ctx, snapshots); err != nil {
		return err
	}

	s.logger.WithField("rows", len(snapshots)).Info("Standings sync complete")
	return nil
}

// SyncOdds fetches live odds and records a snapshot per matched fixture
func (s *IngestionService) SyncOdds(ctx context.Context) error {
	fetched, err := s.odds.FetchOdds(ctx)
	if err != nil {
		metrics.RecordIngestionError(s.odds.Name())
		return err
	}

	upcoming, err := s.repos.Match.GetUpcoming(ctx)
	if err != nil {
		return fmt.Errorf("failed to load upcoming matches: %w", err)
	}

	index, err := s.buildMatchIndex(ctx, upcoming)
	if err != nil {
		return err
	}

	var recorded int
	for _, od := range fetched {
		match := index.lookup(od.HomeTeamName, od.AwayTeamName, od.KickoffTime)
		if match == nil {
			s.logger.WithFields(logrus.Fields{
				"home": od.HomeTeamName,
				"away": od.AwayTeamName,
			}).Debug("No fixture matched odds event")
			continue
		}

		snapshot := &models.OddsSnapshot{
			MatchID:     match.ID,
			Bookmaker:   od.Bookmaker,
			MarketType:  "combined",
			HomeOdds:    od.HomeWin,
			DrawOdds:    od.Draw,
			AwayOdds:    od.AwayWin,
			Over15Odds:  od.Over15,
			Under15Odds: od.Under15,
			Over25Odds:  od.Over25,
			Under25Odds: od.Under25,
			Over35Odds:  od.Over35,
			Under35Odds: od.Under35,
			RecordedAt:  od.FetchedAt,
		}
		if err := s.repos.Odds.Insert(ctx, snapshot); err != nil {
			s.logger.WithError(err).WithField("match_id", match.ID).Warn("Failed to record odds snapshot")
			continue
		}
		recorded++
	}

	s.logger.WithFields(logrus.Fields{
		"events":   len(fetched),
		"recorded": recorded,
	}).Info("Odds sync complete")
	return nil
}

func (s *IngestionService) upsertTeam(ctx context.Context, td datasource.TeamData) (*models.Team, error) {
	return s.repos.Team.Upsert(ctx, &models.Team{
		ExternalID: td.SourceID,
		Name:       td.Name,
		ShortName:  td.ShortName,
	})
}

// matchIndex resolves odds events to fixtures by normalized team names
type matchIndex struct {
	byNames map[string][]*models.Match
}

func (s *IngestionService) buildMatchIndex(ctx context.Context, matches []*models.Match) (*matchIndex, error) {
	idx := &matchIndex{byNames: make(map[string][]*models.Match)}
	for _, m := range matches {
		home, err := s.repos.Team.GetByID(ctx, m.HomeTeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home team %d: %w", m.HomeTeamID, err)
		}
		away, err := s.repos.Team.GetByID(ctx, m.AwayTeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve away team %d: %w", m.AwayTeamID, err)
		}
		key := normalizeTeamName(home.Name) + "|" + normalizeTeamName(away.Name)
		idx.byNames[key] = append(idx.byNames[key], m)
	}
	return idx, nil
}

func (idx *matchIndex) lookup(homeName, awayName string, kickoff time.Time) *models.Match {
	key := normalizeTeamName(homeName) + "|" + normalizeTeamName(awayName)
	for _, m := range idx.byNames[key] {
		delta := m.UTCDate.Sub(kickoff)
		if delta < 0 {
			delta = -delta
		}
		if delta <= kickoffMatchTolerance {
			return m
		}
	}
	return nil
}

// normalizeTeamName canonicalizes provider team names for matching: odds
// feeds tend to drop the "FC"/"AFC" suffixes the fixtures provider keeps
func normalizeTeamName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{" fc", " afc"} {
		name = strings.TrimSuffix(name, suffix)
	}
	name = strings.TrimPrefix(name, "afc ")
	return name
}

// normalizeStatus maps provider statuses onto the internal lifecycle. The
// provider's PAUSED (half time) is still in play for our purposes; terminal
// oddities collapse to POSTPONED.
func normalizeStatus(status string) models.MatchStatus {
	switch status {
	case "SCHEDULED":
		return models.MatchStatusScheduled
	case "TIMED":
		return models.MatchStatusTimed
	case "IN_PLAY", "PAUSED":
		return models.MatchStatusInPlay
	case "FINISHED":
		return models.MatchStatusFinished
	default:
		return models.MatchStatusPostponed
	}
}
