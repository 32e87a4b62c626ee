// Package config provides configuration management for the Mister Predictor
// application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	FootballData FootballDataConfig `mapstructure:"football_data" validate:"required"`
	OddsFeed     OddsFeedConfig     `mapstructure:"odds_feed" validate:"required"`
	Telegram     TelegramConfig     `mapstructure:"telegram" validate:"required"`
	Risk         RiskConfig         `mapstructure:"risk" validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// FootballDataConfig represents the fixtures/standings provider
type FootballDataConfig struct {
	APIURL      string  `mapstructure:"api_url" validate:"required,url"`
	APIKey      string  `mapstructure:"api_key" validate:"required"`
	Competition string  `mapstructure:"competition" validate:"required"`
	RateLimit   float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// OddsFeedConfig represents the bookmaker odds provider
type OddsFeedConfig struct {
	APIURL    string  `mapstructure:"api_url" validate:"required,url"`
	APIKey    string  `mapstructure:"api_key" validate:"required"`
	Bookmaker string  `mapstructure:"bookmaker"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// TelegramConfig represents bot delivery configuration
type TelegramConfig struct {
	BotToken     string  `mapstructure:"bot_token" validate:"required"`
	AdminChatIDs []int64 `mapstructure:"admin_chat_ids"`
	Enabled      bool    `mapstructure:"enabled"`
}

// RiskConfig selects the active risk profile and staking defaults
type RiskConfig struct {
	Profile         string  `mapstructure:"profile" validate:"required,riskprofile"`
	InitialBankroll float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
}

// SchedulerConfig represents cron scheduling configuration
type SchedulerConfig struct {
	DailyAnalysisCron    string `mapstructure:"daily_analysis_cron" validate:"required"`
	OddsPollIntervalMins int    `mapstructure:"odds_poll_interval_mins" validate:"required,gt=0"`
	SettlementCron       string `mapstructure:"settlement_cron" validate:"required"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ActiveRiskProfile resolves the configured profile name. The profile is an
// explicit value handed to the pipeline per run, never process-wide mutable
// state.
func (c *Config) ActiveRiskProfile() RiskProfile {
	return ProfileByName(c.Risk.Profile)
}
