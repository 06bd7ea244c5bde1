package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/importer"
	"trade-journal/internal/logging"
)

// addImportCommands adds broker-export import commands.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a broker CSV export",
		Long: `Import trades from a broker CSV export.

Expected columns: id, symbol, type, entry_price, exit_price, stop_loss,
target_price, quantity, pnl, entry_time, exit_time, reason, emotions, tags.
Only symbol, entry_price, quantity and entry_time are required; missing ids
are generated. Invalid rows are skipped and reported.`,
		Example: `  tradejournal import trades.csv
  tradejournal import trades.csv --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			dryRun, _ := cmd.Flags().GetBool("dry-run")

			start := time.Now()
			imp := importer.NewCSVImporter(app.Logger)
			result, err := imp.ImportFile(args[0])
			if err != nil {
				return err
			}

			saved := 0
			if !dryRun {
				for i := range result.Trades {
					if err := app.Store.SaveTrade(ctx, &result.Trades[i]); err != nil {
						result.Errors = append(result.Errors, err)
						continue
					}
					saved++
				}
			}
			logging.LogImport(app.Logger, args[0], saved, result.Skipped, time.Since(start))

			if output.IsJSON() {
				errs := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, e.Error())
				}
				return output.JSON(struct {
					Parsed  int      `json:"parsed"`
					Saved   int      `json:"saved"`
					Skipped int      `json:"skipped"`
					DryRun  bool     `json:"dryRun"`
					Errors  []string `json:"errors,omitempty"`
				}{result.Imported, saved, result.Skipped, dryRun, errs})
			}

			if dryRun {
				output.Info("Dry run: %d rows parsed, %d skipped, nothing saved", result.Imported, result.Skipped)
			} else {
				output.Success("✓ Imported %d trades (%d rows skipped)", saved, result.Skipped)
			}
			for _, e := range result.Errors {
				output.Warning("  %v", e)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Parse and validate without saving")

	rootCmd.AddCommand(cmd)
}
