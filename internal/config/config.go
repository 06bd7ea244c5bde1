// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"trade-journal/internal/mistakes"
)

// Config holds all application configuration.
type Config struct {
	Account  AccountConfig  `mapstructure:"account"`
	Detector DetectorConfig `mapstructure:"detector"`
	Market   MarketConfig   `mapstructure:"market"`
	Insights InsightsConfig `mapstructure:"insights"`
	UI       UIConfig       `mapstructure:"ui"`

	dir string
}

// AccountConfig holds account-level settings.
type AccountConfig struct {
	Size     float64 `mapstructure:"size"`
	Currency string  `mapstructure:"currency"`
}

// DetectorConfig holds the mistake-detection thresholds. Zero values fall
// back to the engine defaults so a sparse config file still works.
type DetectorConfig struct {
	MaxPositionPercent float64 `mapstructure:"max_position_percent"`
	MaxStopPercent     float64 `mapstructure:"max_stop_percent"`
	HighStopPercent    float64 `mapstructure:"high_stop_percent"`
	MinRiskReward      float64 `mapstructure:"min_risk_reward"`
	HighRiskReward     float64 `mapstructure:"high_risk_reward"`
	RevengeWindowMin   int     `mapstructure:"revenge_window_minutes"`
	QuickExitMin       int     `mapstructure:"quick_exit_minutes"`
	MaxDailyTrades     int     `mapstructure:"max_daily_trades"`
	HighDailyTrades    int     `mapstructure:"high_daily_trades"`
	MinReasonLength    int     `mapstructure:"min_reason_length"`
	PlanReasonLength   int     `mapstructure:"plan_reason_length"`
	LateEntryHour      int     `mapstructure:"late_entry_hour"`
	GapRiskHour        int     `mapstructure:"gap_risk_hour"`
}

// MarketConfig holds market session settings.
type MarketConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// InsightsConfig holds AI insight generation settings.
type InsightsConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradejournal"
	}
	return filepath.Join(home, ".config", "tradejournal")
}

// DefaultDBPath returns the default database location.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "journal.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{dir: configDir}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func applyDefaults(cfg *Config) {
	if cfg.Account.Size == 0 {
		cfg.Account.Size = 100000
	}
	if cfg.Account.Currency == "" {
		cfg.Account.Currency = "$"
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "UTC"
	}
	if cfg.Insights.Model == "" {
		cfg.Insights.Model = "gpt-4o-mini"
	}
	if cfg.Insights.RequestsPerMinute == 0 {
		cfg.Insights.RequestsPerMinute = 20
	}
	if cfg.UI.DateFormat == "" {
		cfg.UI.DateFormat = "02-Jan-2006"
	}
	if cfg.UI.TimeFormat == "" {
		cfg.UI.TimeFormat = "15:04:05"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Insights.APIKey = v
	}
	if v := os.Getenv("TRADEJOURNAL_TIMEZONE"); v != "" {
		cfg.Market.Timezone = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Account.Size < 0 {
		return fmt.Errorf("account size must be non-negative")
	}
	if c.Detector.MaxPositionPercent < 0 || c.Detector.MaxPositionPercent > 100 {
		return fmt.Errorf("max_position_percent must be between 0 and 100")
	}
	if c.Detector.MinRiskReward < 0 {
		return fmt.Errorf("min_risk_reward must be non-negative")
	}
	if c.Detector.LateEntryHour < 0 || c.Detector.LateEntryHour > 23 {
		return fmt.Errorf("late_entry_hour must be between 0 and 23")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("invalid market timezone %q: %w", c.Market.Timezone, err)
	}
	return nil
}

// Dir returns the directory this configuration was loaded from.
func (c *Config) Dir() string {
	if c.dir == "" {
		return DefaultConfigDir()
	}
	return c.dir
}

// DBPath returns the database location inside the config directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Dir(), "journal.db")
}

// MarketLocation returns the configured market timezone.
func (c *Config) MarketLocation() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DetectorConfig maps the file-level settings onto the engine's threshold
// table, falling back to engine defaults for unset values.
func (c *Config) DetectorConfig() mistakes.Config {
	out := mistakes.DefaultConfig()
	out.AccountSize = c.Account.Size
	out.Market = c.MarketLocation()

	d := c.Detector
	if d.MaxPositionPercent > 0 {
		out.MaxPositionPercent = d.MaxPositionPercent
	}
	if d.MaxStopPercent > 0 {
		out.MaxStopPercent = d.MaxStopPercent
	}
	if d.HighStopPercent > 0 {
		out.HighStopPercent = d.HighStopPercent
	}
	if d.MinRiskReward > 0 {
		out.MinRiskReward = d.MinRiskReward
	}
	if d.HighRiskReward > 0 {
		out.HighRiskReward = d.HighRiskReward
	}
	if d.RevengeWindowMin > 0 {
		out.RevengeWindow = time.Duration(d.RevengeWindowMin) * time.Minute
	}
	if d.QuickExitMin > 0 {
		out.QuickExitWindow = time.Duration(d.QuickExitMin) * time.Minute
	}
	if d.MaxDailyTrades > 0 {
		out.MaxDailyTrades = d.MaxDailyTrades
	}
	if d.HighDailyTrades > 0 {
		out.HighDailyTrades = d.HighDailyTrades
	}
	if d.MinReasonLength > 0 {
		out.MinReasonLength = d.MinReasonLength
	}
	if d.PlanReasonLength > 0 {
		out.PlanReasonLength = d.PlanReasonLength
	}
	if d.LateEntryHour > 0 {
		out.LateEntryHour = d.LateEntryHour
	}
	if d.GapRiskHour > 0 {
		out.GapRiskHour = d.GapRiskHour
	}
	return out
}

// HasInsights reports whether AI insight generation is configured.
func (c *Config) HasInsights() bool {
	return c.Insights.APIKey != ""
}
