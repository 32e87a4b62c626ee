// Package main provides the entry point for the prediction bot daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/config"
	"github.com/yourusername/mister-predictor/internal/database"
	"github.com/yourusername/mister-predictor/internal/datasource"
	"github.com/yourusername/mister-predictor/internal/health"
	applogger "github.com/yourusername/mister-predictor/internal/logger"
	"github.com/yourusername/mister-predictor/internal/metrics"
	"github.com/yourusername/mister-predictor/internal/repository"
	"github.com/yourusername/mister-predictor/internal/scheduler"
	"github.com/yourusername/mister-predictor/internal/service"
	"github.com/yourusername/mister-predictor/internal/telegram"
)

func main() {
	cfg, err := config.LoadWithDefaults(os.Getenv("MISTER_PREDICTOR_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"profile":     cfg.Risk.Profile,
	}).Info("Mister Predictor starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	initialBankroll := decimal.NewFromFloat(cfg.Risk.InitialBankroll)
	if err := repos.Bankroll.InitializeIfEmpty(ctx, initialBankroll); err != nil {
		appLog.WithError(err).Fatal("Failed to initialize bankroll")
	}

	// External data clients
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

	// Services
	ingestionSvc := service.NewIngestionService(fixtures, oddsFeed, repos, appLog)
	pipelineSvc := service.NewSignalPipelineService(repos, db, cfg.ActiveRiskProfile(), appLog)
	settlementSvc := service.NewSettlementService(repos, appLog)

	// Metrics and health
	metrics.InitRegistry()
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		Logger:      appLog,
		DB:          db,
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsPath = cfg.Metrics.Path
		healthCfg.Metrics = metrics.Handler()
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Scheduler
	sched := scheduler.NewScheduler(ingestionSvc, pipelineSvc, settlementSvc, appLog)
	if err := sched.ScheduleDailyAnalysis(cfg.Scheduler.DailyAnalysisCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule daily analysis")
	}
	if err := sched.ScheduleOddsPolling(cfg.Scheduler.OddsPollIntervalMins); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule odds polling")
	}
	if err := sched.ScheduleSettlement(cfg.Scheduler.SettlementCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule settlement")
	}
	// Telegram delivery
	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.AdminChatIDs, repos, pipelineSvc, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to start telegram bot")
		}
		go bot.Run(ctx)

		notifier := telegram.NewNotifier(bot, cfg.Telegram.AdminChatIDs, appLog)
		if err := sched.SchedulePublisher(notifier); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule signal notifier")
		}
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	healthServer.SetReady(true)
	appLog.Info("Mister Predictor running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)
	cancel()
}
