// Package main provides the on-demand analysis CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/mister-predictor/internal/config"
	"github.com/yourusername/mister-predictor/internal/database"
	applogger "github.com/yourusername/mister-predictor/internal/logger"
	"github.com/yourusername/mister-predictor/internal/repository"
	"github.com/yourusername/mister-predictor/internal/service"
)

var (
	configFile string
	profile    string

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().StringVarP(&profile, "profile", "p", "", "Risk profile override (conservative, balanced, aggressive)")
}

var rootCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the betting analysis pipeline",
	Long:  `Analyze upcoming matches, settle finished ones and inspect current signals.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze all upcoming matches and generate signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		activeProfile := cfg.ActiveRiskProfile()
		if profile != "" {
			activeProfile = config.ProfileByName(profile)
		}

		pipeline := service.NewSignalPipelineService(repos, db, activeProfile, appLog)
		report, err := pipeline.RunAnalysis(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Matches considered: %d\n", report.MatchesTotal)
		fmt.Printf("Signals created:    %d\n", report.SignalsCreated)
		fmt.Printf("Failures:           %d\n", report.Failures)
		fmt.Printf("Duration:           %s\n", report.Duration)
		return nil
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Resolve open signals against finished matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		settlement := service.NewSettlementService(repos, appLog)
		report, err := settlement.SettleAll(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Matches processed: %d\n", report.MatchesProcessed)
		fmt.Printf("Signals settled:   %d\n", report.SignalsSettled)
		fmt.Printf("Signals skipped:   %d\n", report.SignalsSkipped)
		fmt.Printf("PnL:               %s\n", report.TotalPnL.StringFixed(2))
		return nil
	},
}

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Print the latest signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		signals, err := repos.Signal.GetLatest(ctx, 20)
		if err != nil {
			return err
		}
		if len(signals) == 0 {
			fmt.Println("No signals stored.")
			return nil
		}

		for _, sig := range signals {
			status := "open"
			if sig.IsResolved() {
				if *sig.ResultWon {
					status = "won"
				} else {
					status = "lost"
				}
			}
			fmt.Printf("match=%d %s @ %.2f edge=%.1f%% conf=%.0f%% stake=%.2f [%s]\n",
				sig.MatchID, sig.SuggestedBet, sig.BookmakerOdds,
				sig.ValueEdge*100, sig.ConfidenceScore*100, sig.RecommendedStake, status)
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(runCmd, settleCmd, signalsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setupDependencies() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLog = applogger.NewLogger(cfg.App.LogLevel)

	db, err = database.Initialize(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return err
	}
	return nil
}
