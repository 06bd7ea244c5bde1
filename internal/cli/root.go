package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/config"
	"trade-journal/internal/insights"
	"trade-journal/internal/logging"
	"trade-journal/internal/mistakes"
	"trade-journal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Detector *mistakes.Detector
	Insights *insights.Generator
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Detector: mistakes.NewDetector(cfg.DetectorConfig()),
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	// Initialize insight generator if OpenAI API key is available
	if cfg.HasInsights() {
		llm := insights.NewOpenAIClient(cfg.Insights.APIKey, cfg.Insights.Model)
		app.Insights = insights.NewGenerator(llm, int(cfg.Insights.RequestsPerMinute), logger)
		logger.Debug().Str("model", cfg.Insights.Model).Msg("Insight generator initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Trading journal with automated mistake detection",
		Long: `Trade Journal is a CLI for journaling trades and learning from them.

Every trade you log can be analyzed by a deterministic rule engine that
flags common mistakes: missing stops, poor risk/reward, revenge trading,
overtrading and more. Optional AI coaching notes build on the findings.

Use 'tradejournal help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradejournal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addTradeCommands(rootCmd, app)
	addAnalyzeCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addImportCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addUtilityCommands(rootCmd, app)

	return rootCmd
}
