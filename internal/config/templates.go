package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[account]
# Account equity used for position-size checks
size = 100000.0
# Currency symbol for display
currency = "$"

[detector]
# Position size cap as a percentage of account equity
max_position_percent = 10.0
# Stop-loss distance (percent of entry) above which a stop is too wide
max_stop_percent = 5.0
# Stop-loss distance that escalates the wide-stop flag to high severity
high_stop_percent = 10.0
# Minimum acceptable reward:risk ratio
min_risk_reward = 2.0
# Ratio below which poor risk:reward is flagged at high severity
high_risk_reward = 1.5
# Window after a losing exit in which a new entry counts as revenge trading
revenge_window_minutes = 30
# Hold time below which a losing exit counts as premature
quick_exit_minutes = 5
# Same-day trade count above which overtrading fires
max_daily_trades = 5
# Same-day trade count that escalates overtrading to high severity
high_daily_trades = 8
# Shortest trade reason that does not look like an impulse entry
min_reason_length = 10
# Reason length the trade-plan rule expects
plan_reason_length = 20
# Entries at or after this hour (market time) are flagged as late
late_entry_hour = 15
# Friday entries at or after this hour still open are flagged for gap risk
gap_risk_hour = 14

[market]
# Market timezone for the timing rules (IANA name)
timezone = "UTC"

[insights]
# OpenAI API key for AI-generated insights (or set OPENAI_API_KEY)
api_key = ""
# Model used for insight generation
model = "gpt-4o-mini"
# Rate limit for bulk insight generation
requests_per_minute = 20.0

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"
`

// createTemplateConfig writes the default config template and returns nil
// so first runs work without a config file.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

// WriteTemplate writes the default config template to the given directory,
// overwriting any existing file. Used by `tradejournal config init`.
func WriteTemplate(configDir string) (string, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}
	return path, nil
}
