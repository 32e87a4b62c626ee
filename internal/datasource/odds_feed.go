package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const oddsFeedSourceName = "odds_feed"

// OddsFeedClient implements OddsProvider against a the-odds-api style feed
type OddsFeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	bookmaker  string
	sportKey   string
	logger     *log.Logger
}

// NewOddsFeedClient creates a new odds feed client. An empty bookmaker means
// the first bookmaker present on each event is used.
func NewOddsFeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, bookmaker string, logger *log.Logger) *OddsFeedClient {
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com/v4"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &OddsFeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		bookmaker:  bookmaker,
		sportKey:   "soccer_epl",
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *OddsFeedClient) Name() string {
	return oddsFeedSourceName
}

type oddsEvent struct {
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	CommenceTime string `json:"commence_time"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string   `json:"name"`
				Price float64  `json:"price"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchOdds retrieves current odds for upcoming matches in the configured competition
func (c *OddsFeedClient) FetchOdds(ctx context.Context) ([]OddsData, error) {
	url := fmt.Sprintf("%s/sports/%s/odds?apiKey=%s&regions=uk&markets=h2h,totals&oddsFormat=decimal",
		c.baseURL, c.sportKey, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(oddsFeedSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(oddsFeedSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewDataSourceError(oddsFeedSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(oddsFeedSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(oddsFeedSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var events []oddsEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewDataSourceError(oddsFeedSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	now := time.Now().UTC()
	odds := make([]OddsData, 0, len(events))
	for _, event := range events {
		kickoff, err := time.Parse(time.RFC3339, event.CommenceTime)
		if err != nil {
			c.logger.Printf("skipping event %s vs %s with unparseable kickoff %q: %v",
				event.HomeTeam, event.AwayTeam, event.CommenceTime, err)
			continue
		}

		data, ok := c.extractPrices(event)
		if !ok {
			continue
		}
		data.HomeTeamName = event.HomeTeam
		data.AwayTeamName = event.AwayTeam
		data.KickoffTime = kickoff
		data.FetchedAt = now
		odds = append(odds, data)
	}

	return odds, nil
}

// extractPrices pulls h2h and totals prices from the preferred bookmaker
func (c *OddsFeedClient) extractPrices(event oddsEvent) (OddsData, bool) {
	var data OddsData
	for _, bm := range event.Bookmakers {
		if c.bookmaker != "" && bm.Key != c.bookmaker {
			continue
		}
		data.Bookmaker = bm.Key
		for _, market := range bm.Markets {
			switch market.Key {
			case "h2h":
				for _, outcome := range market.Outcomes {
					price := outcome.Price
					switch outcome.Name {
					case event.HomeTeam:
						data.HomeWin = &price
					case event.AwayTeam:
						data.AwayWin = &price
					case "Draw":
						data.Draw = &price
					}
				}
			case "totals":
				for _, outcome := range market.Outcomes {
					if outcome.Point == nil {
						continue
					}
					price := outcome.Price
					over := outcome.Name == "Over"
					switch *outcome.Point {
					case 1.5:
						if over {
							data.Over15 = &price
						} else {
							data.Under15 = &price
						}
					case 2.5:
						if over {
							data.Over25 = &price
						} else {
							data.Under25 = &price
						}
					case 3.5:
						if over {
							data.Over35 = &price
						} else {
							data.Under35 = &price
						}
					}
				}
			}
		}
		return data, data.HomeWin != nil || data.Over25 != nil
	}
	return data, false
}
