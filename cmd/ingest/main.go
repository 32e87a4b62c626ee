// Package main provides the one-shot data ingestion CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/yourusername/mister-predictor/internal/config"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/datasource"
	applogger "github.com/yourusername/mister-predictor/internal/logger"
	"github.com/yourusername/mister-predictor/internal/repository"
	"github.com/yourusername/mister-predictor/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		matches    = flag.Bool("matches", true, "Sync matches and teams")
		standings  = flag.Bool("standings", true, "Sync the league table")
		odds       = flag.Bool("odds", true, "Sync bookmaker odds")
		timeout    = flag.Duration("timeout", 10*time.Minute, "Overall timeout")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := applogger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	fixturesCfg := datasource.DefaultHTTPClientConfig()
	fixturesCfg.RateLimit = cfg.FootballData.RateLimit
	fixturesHTTP := datasource.NewRateLimitedHTTPClient(fixturesCfg, log.New(os.Stdout, "football-data: ", log.LstdFlags))
	defer fixturesHTTP.Close()

	oddsCfg := datasource.DefaultHTTPClientConfig()
	oddsCfg.RateLimit = cfg.OddsFeed.RateLimit
	oddsHTTP := datasource.NewRateLimitedHTTPClient(oddsCfg, log.New(os.Stdout, "odds-feed: ", log.LstdFlags))
	defer oddsHTTP.Close()

	fixtures := datasource.NewFootballDataClient(fixturesHTTP, cfg.FootballData.APIURL, cfg.FootballData.APIKey, cfg.FootballData.Competition, nil)
	oddsFeed := datasource.NewOddsFeedClient(oddsHTTP, cfg.OddsFeed.APIURL, cfg.OddsFeed.APIKey, cfg.OddsFeed.Bookmaker, nil)

	ingestion := service.NewIngestionService(fixtures, oddsFeed, repos, appLog)

	if *matches {
		if err := ingestion.SyncMatches(ctx); err != nil {
			appLog.WithError(err).Fatal("Match sync failed")
		}
	}
	if *standings {
		if err := ingestion.SyncStandings(ctx); err != nil {
			appLog.WithError(err).Fatal("Standings sync failed")
		}
	}
	if *odds {
		if err := ingestion.SyncOdds(ctx); err != nil {
			appLog.WithError(err).Fatal("Odds sync failed")
		}
	}

	appLog.Info("Ingestion complete")
}
