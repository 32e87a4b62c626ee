package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const (
	footballDataSourceName = "football_data"

	matchesCacheTTL   = 5 * time.Minute
	standingsCacheTTL = 1 * time.Hour
)

// FootballDataClient implements FixtureProvider for the football-data.org API
type FootballDataClient struct {
	httpClient  *RateLimitedHTTPClient
	baseURL     string
	apiKey      string
	competition string
	cache       *cache.Cache
	logger      *log.Logger
}

// NewFootballDataClient creates a new football-data.org API client
func NewFootballDataClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, competition string, logger *log.Logger) *FootballDataClient {
	if baseURL == "" {
		baseURL = "https://api.football-data.org/v4"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FootballDataClient{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      apiKey,
		competition: competition,
		cache:       cache.New(matchesCacheTTL, 10*time.Minute),
		logger:      logger,
	}
}

// Name returns the name of the data source
func (c *FootballDataClient) Name() string {
	return footballDataSourceName
}

// fdMatchesResponse is the wire shape of the competition matches endpoint
type fdMatchesResponse struct {
	Matches []fdMatch `json:"matches"`
}

type fdMatch struct {
	ID       int64  `json:"id"`
	UTCDate  string `json:"utcDate"`
	Status   string `json:"status"`
	Matchday int    `json:"matchday"`
	Season   struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"season"`
	HomeTeam fdTeam `json:"homeTeam"`
	AwayTeam fdTeam `json:"awayTeam"`
	Score    struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
		HalfTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"halfTime"`
	} `json:"score"`
}

type fdTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest"`
}

// fdStandingsResponse is the wire shape of the competition standings endpoint
type fdStandingsResponse struct {
	Standings []struct {
		Type  string `json:"type"`
		Table []struct {
			Position       int    `json:"position"`
			Team           fdTeam `json:"team"`
			PlayedGames    int    `json:"playedGames"`
			Form           string `json:"form"`
			Won            int    `json:"won"`
			Draw           int    `json:"draw"`
			Lost           int    `json:"lost"`
			Points         int    `json:"points"`
			GoalsFor       int    `json:"goalsFor"`
			GoalsAgainst   int    `json:"goalsAgainst"`
			GoalDifference int    `json:"goalDifference"`
		} `json:"table"`
	} `json:"standings"`
}

// FetchMatches retrieves matches for the configured competition within the date range
func (c *FootballDataClient) FetchMatches(ctx context.Context, dateFrom, dateTo time.Time) ([]MatchData, error) {
	cacheKey := fmt.Sprintf("matches:%s:%s:%s", c.competition, dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))
	if cached, found := c.cache.Get(cacheKey); found {
		if matches, ok := cached.([]MatchData); ok {
			return matches, nil
		}
	}

	url := fmt.Sprintf("%s/competitions/%s/matches?dateFrom=%s&dateTo=%s",
		c.baseURL, c.competition, dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))

	var payload fdMatchesResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	matches := make([]MatchData, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		kickoff, err := time.Parse(time.RFC3339, m.UTCDate)
		if err != nil {
			c.logger.Printf("skipping match %d with unparseable kickoff %q: %v", m.ID, m.UTCDate, err)
			continue
		}
		matches = append(matches, MatchData{
			SourceID:    m.ID,
			Competition: c.competition,
			Season:      seasonLabel(m.Season.StartDate, m.Season.EndDate),
			Matchday:    m.Matchday,
			KickoffTime: kickoff,
			Status:      m.Status,
			HomeTeam: TeamData{
				SourceID:  m.HomeTeam.ID,
				Name:      m.HomeTeam.Name,
				ShortName: m.HomeTeam.ShortName,
				Crest:     m.HomeTeam.Crest,
			},
			AwayTeam: TeamData{
				SourceID:  m.AwayTeam.ID,
				Name:      m.AwayTeam.Name,
				ShortName: m.AwayTeam.ShortName,
				Crest:     m.AwayTeam.Crest,
			},
			HomeScore:         m.Score.FullTime.Home,
			AwayScore:         m.Score.FullTime.Away,
			HalfTimeHomeScore: m.Score.HalfTime.Home,
			HalfTimeAwayScore: m.Score.HalfTime.Away,
			FetchedAt:         now,
		})
	}

	c.cache.Set(cacheKey, matches, matchesCacheTTL)
	return matches, nil
}

// FetchStandings retrieves the current league table for the configured competition
func (c *FootballDataClient) FetchStandings(ctx context.Context) ([]StandingData, error) {
	cacheKey := "standings:" + c.competition
	if cached, found := c.cache.Get(cacheKey); found {
		if standings, ok := cached.([]StandingData); ok {
			return standings, nil
		}
	}

	url := fmt.Sprintf("%s/competitions/%s/standings", c.baseURL, c.competition)

	var payload fdStandingsResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	var rows []StandingData
	for _, standing := range payload.Standings {
		// Only the overall table matters; home/away splits are ignored
		if standing.Type != "TOTAL" {
			continue
		}
		for _, entry := range standing.Table {
			rows = append(rows, StandingData{
				TeamSourceID:   entry.Team.ID,
				Position:       entry.Position,
				PlayedGames:    entry.PlayedGames,
				Won:            entry.Won,
				Draw:           entry.Draw,
				Lost:           entry.Lost,
				Points:         entry.Points,
				GoalsFor:       entry.GoalsFor,
				GoalsAgainst:   entry.GoalsAgainst,
				GoalDifference: entry.GoalDifference,
				Form:           entry.Form,
			})
		}
	}

	if len(rows) == 0 {
		return nil, NewDataSourceError(footballDataSourceName, ErrCodeInvalidData, "standings response contained no TOTAL table", nil)
	}

	c.cache.Set(cacheKey, rows, standingsCacheTTL)
	return rows, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out
func (c *FootballDataClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewDataSourceError(footballDataSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("X-Auth-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(footballDataSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(footballDataSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(footballDataSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(footballDataSourceName, ErrCodeNotFound, "resource not found", ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(footballDataSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(footballDataSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// seasonLabel builds a "2025/26" style label from season boundary dates
func seasonLabel(startDate, endDate string) string {
	if len(startDate) < 4 || len(endDate) < 4 {
		return ""
	}
	if startDate[:4] == endDate[:4] {
		return startDate[:4]
	}
	return startDate[:4] + "/" + endDate[2:4]
}
