package cli

import (
	"github.com/spf13/cobra"

	"trade-journal/internal/config"
)

// addUtilityCommands adds version, config and reference commands.
func addUtilityCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRulesCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir()})
			} else {
				output.Println(app.Config.Dir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a fresh config template",
		Long:  "Write the default config.toml template, overwriting any existing file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			path, err := config.WriteTemplate(dir)
			if err != nil {
				return err
			}
			output.Success("✓ Config template written to %s", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, app *App) error {
	cfg := app.Config
	engine := app.Detector.Config()

	output.Bold("Account")
	output.Printf("  Size:            %s\n", FormatCurrency(cfg.Account.Size, cfg.Account.Currency))
	output.Printf("  Currency:        %s\n", cfg.Account.Currency)
	output.Println()

	output.Bold("Market")
	output.Printf("  Timezone:        %s\n", cfg.Market.Timezone)
	output.Println()

	output.Bold("Detection Thresholds")
	output.Printf("  Max Position %%:  %.1f%%\n", engine.MaxPositionPercent)
	output.Printf("  Max Stop %%:      %.1f%% (high at %.1f%%)\n", engine.MaxStopPercent, engine.HighStopPercent)
	output.Printf("  Min Risk/Reward: %.1f (high below %.1f)\n", engine.MinRiskReward, engine.HighRiskReward)
	output.Printf("  Revenge Window:  %s\n", engine.RevengeWindow)
	output.Printf("  Quick Exit:      %s\n", engine.QuickExitWindow)
	output.Printf("  Max Daily Trades: %d (high at %d)\n", engine.MaxDailyTrades, engine.HighDailyTrades)
	output.Printf("  Late Entry Hour: %02d:00\n", engine.LateEntryHour)
	output.Println()

	output.Bold("Insights")
	output.Printf("  Configured:      %v\n", cfg.HasInsights())
	output.Printf("  Model:           %s\n", cfg.Insights.Model)
	output.Printf("  Rate Limit:      %.0f req/min\n", cfg.Insights.RequestsPerMinute)

	return nil
}

// ruleDoc describes one detection rule for the reference listing.
type ruleDoc struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Fires    string `json:"fires"`
}

func newRulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the mistake-detection rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			engine := app.Detector.Config()

			docs := []ruleDoc{
				{"NO_STOPLOSS", "RISK_MANAGEMENT", "open trade has no stop loss"},
				{"WIDE_STOPLOSS", "RISK_MANAGEMENT", "stop risks more than the per-trade limit"},
				{"POOR_RISK_REWARD", "RISK_MANAGEMENT", "reward/risk below the minimum ratio"},
				{"OVER_LEVERAGED", "RISK_MANAGEMENT", "position size above the account cap"},
				{"NO_TARGET", "RISK_MANAGEMENT", "no target price set"},
				{"WEEKEND_ENTRY", "TIMING", "entry on a weekend, or open into one"},
				{"LATE_DAY_ENTRY", "TIMING", "entry in the last market hour"},
				{"QUICK_EXIT", "TIMING", "losing trade cut within minutes"},
				{"REVENGE_TRADING", "PSYCHOLOGY", "re-entry right after a loss, sized up"},
				{"OVERTRADING", "PSYCHOLOGY", "too many trades in one day"},
				{"FOMO_ENTRY", "PSYCHOLOGY", "chased entry or near-empty reason"},
				{"EMOTIONAL_TRADING", "PSYCHOLOGY", "negative emotions logged at entry"},
				{"NO_TRADE_PLAN", "STRATEGY", "missing plan, stop, or target"},
				{"COUNTER_TREND", "STRATEGY", "entry tagged against the trend"},
			}

			if output.IsJSON() {
				return output.JSON(docs)
			}

			output.Bold("Detection Rules")
			output.Println()
			table := NewTable(output, "Rule", "Category", "Fires When")
			for _, d := range docs {
				table.AddRow(d.ID, d.Category, d.Fires)
			}
			table.Render()
			output.Println()
			output.Dim("Thresholds: stop %.1f%%, R/R %.1f, %d trades/day, position %.1f%% of account",
				engine.MaxStopPercent, engine.MinRiskReward, engine.MaxDailyTrades, engine.MaxPositionPercent)
			return nil
		},
	}
}
