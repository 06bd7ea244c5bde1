package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trade-journal/internal/logging"
	"trade-journal/internal/mistakes"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

const storeTimeout = 30 * time.Second

// addTradeCommands adds trade management commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade management",
		Long:  "Record, list, close, and delete journaled trades.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func requireStore(app *App) error {
	if app.Store == nil {
		return fmt.Errorf("store not initialized")
	}
	return nil
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Record a new trade",
		Long: `Record a new trade in the journal.

Stop loss, target and reason are optional but the analyzer will flag
trades that omit them.`,
		Example: `  tradejournal trade add AAPL --entry 182.5 --qty 10 --stop 179 --target 190 --reason "Breakout above 20-day high"
  tradejournal trade add TSLA --type short --entry 250 --qty 5 --emotions fear,rushed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			entry, _ := cmd.Flags().GetFloat64("entry")
			qty, _ := cmd.Flags().GetInt("qty")
			if entry <= 0 {
				return fmt.Errorf("--entry must be positive")
			}
			if qty <= 0 {
				return fmt.Errorf("--qty must be positive")
			}

			tradeType := models.TradeLong
			if typeFlag, _ := cmd.Flags().GetString("type"); strings.EqualFold(typeFlag, "short") {
				tradeType = models.TradeShort
			}

			entryTime := time.Now()
			if at, _ := cmd.Flags().GetString("time"); at != "" {
				parsed, err := time.Parse("2006-01-02 15:04", at)
				if err != nil {
					return fmt.Errorf("parsing --time: %w", err)
				}
				entryTime = parsed
			}

			reason, _ := cmd.Flags().GetString("reason")
			emotions, _ := cmd.Flags().GetStringSlice("emotions")
			tags, _ := cmd.Flags().GetStringSlice("tags")

			trade := &models.Trade{
				ID:           uuid.NewString(),
				Symbol:       strings.ToUpper(args[0]),
				Type:         tradeType,
				EntryPrice:   entry,
				Quantity:     qty,
				PositionSize: entry * float64(qty),
				Status:       models.StatusOpen,
				EntryTime:    entryTime,
				Reason:       reason,
				Emotions:     emotions,
				Tags:         tags,
				CreatedAt:    time.Now().UTC(),
			}
			if stop, _ := cmd.Flags().GetFloat64("stop"); stop > 0 {
				trade.StopLoss = &stop
			}
			if target, _ := cmd.Flags().GetFloat64("target"); target > 0 {
				trade.TargetPrice = &target
			}

			if err := app.Store.SaveTrade(ctx, trade); err != nil {
				return err
			}
			logging.LogTrade(app.Logger, trade.ID, trade.Symbol, string(trade.Type), trade.Quantity, trade.EntryPrice)

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade recorded: %s", trade.ID)
			output.Printf("  %s %s %d @ %s (position %s)\n",
				strings.ToUpper(string(trade.Type)), trade.Symbol, trade.Quantity,
				FormatCurrency(trade.EntryPrice, app.Config.Account.Currency),
				FormatCurrency(trade.PositionSize, app.Config.Account.Currency))
			if trade.StopLoss == nil {
				output.Warning("  No stop loss set. Run 'tradejournal analyze %s' to review.", trade.ID)
			}
			return nil
		},
	}

	cmd.Flags().Float64("entry", 0, "Entry price (required)")
	cmd.Flags().Int("qty", 0, "Quantity (required)")
	cmd.Flags().String("type", "long", "Trade type (long or short)")
	cmd.Flags().Float64("stop", 0, "Stop loss price")
	cmd.Flags().Float64("target", 0, "Target price")
	cmd.Flags().String("reason", "", "Why you are taking this trade")
	cmd.Flags().StringSlice("emotions", nil, "Emotions at entry (comma separated)")
	cmd.Flags().StringSlice("tags", nil, "Tags (comma separated)")
	cmd.Flags().String("time", "", "Entry time (YYYY-MM-DD HH:MM, default now)")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("qty")

	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled trades",
		Example: `  tradejournal trade list
  tradejournal trade list --symbol AAPL --status open
  tradejournal trade list --tag breakout --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			symbol, _ := cmd.Flags().GetString("symbol")
			status, _ := cmd.Flags().GetString("status")
			tag, _ := cmd.Flags().GetString("tag")
			limit, _ := cmd.Flags().GetInt("limit")

			trades, err := app.Store.GetTrades(ctx, store.TradeFilter{
				Symbol: strings.ToUpper(symbol),
				Status: models.TradeStatus(status),
				Tag:    tag,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Symbol", "Type", "Qty", "Entry", "Status", "P&L")
			for _, t := range trades {
				pnl := ""
				if t.PnL != nil {
					pnl = output.FormatPnL(*t.PnL, app.Config.Account.Currency)
				}
				table.AddRow(
					TruncateString(t.ID, 10),
					t.EntryTime.In(app.Config.MarketLocation()).Format(app.Config.UI.DateFormat),
					t.Symbol,
					string(t.Type),
					fmt.Sprintf("%d", t.Quantity),
					FormatCurrency(t.EntryPrice, app.Config.Account.Currency),
					output.StatusTag(string(t.Status)),
					pnl,
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trades", len(trades))
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "Filter by symbol")
	cmd.Flags().String("status", "", "Filter by status (open, win, loss, breakeven)")
	cmd.Flags().String("tag", "", "Filter by tag")
	cmd.Flags().Int("limit", 50, "Maximum trades to show")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show trade details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}

			printTradeDetails(output, app, trade)

			// Show the saved analysis if one exists.
			if record, err := app.Store.GetAnalysis(ctx, trade.ID); err == nil {
				var found []mistakes.Mistake
				if json.Unmarshal(record.Mistakes, &found) == nil {
					output.Println()
					output.Printf("  Analyzed:   %s (%d mistakes)\n",
						record.CreatedAt.In(app.Config.MarketLocation()).Format(app.Config.UI.DateFormat), len(found))
					for _, m := range found {
						output.Printf("    %s %s\n", output.SeverityTag(string(m.Severity)), m.ID)
					}
				}
				if record.Insight != "" {
					output.Printf("  Coaching:   %s\n", record.Insight)
				}
			}
			return nil
		},
	}
}

func printTradeDetails(output *Output, app *App, trade *models.Trade) {
	currency := app.Config.Account.Currency
	loc := app.Config.MarketLocation()
	layout := app.Config.UI.DateFormat + " " + app.Config.UI.TimeFormat

	output.Bold("Trade %s", trade.ID)
	output.Printf("  Symbol:     %s (%s)\n", trade.Symbol, trade.Type)
	output.Printf("  Status:     %s\n", output.StatusTag(string(trade.Status)))
	output.Printf("  Entry:      %s @ %s\n", trade.EntryTime.In(loc).Format(layout), FormatCurrency(trade.EntryPrice, currency))
	output.Printf("  Quantity:   %d (position %s)\n", trade.Quantity, FormatCurrency(trade.PositionSize, currency))
	if trade.StopLoss != nil {
		output.Printf("  Stop Loss:  %s\n", FormatCurrency(*trade.StopLoss, currency))
	} else {
		output.Printf("  Stop Loss:  %s\n", output.Yellow("not set"))
	}
	if trade.TargetPrice != nil {
		output.Printf("  Target:     %s\n", FormatCurrency(*trade.TargetPrice, currency))
	} else {
		output.Printf("  Target:     %s\n", output.Yellow("not set"))
	}
	if trade.ExitTime != nil && trade.ExitPrice != nil {
		output.Printf("  Exit:       %s @ %s\n", trade.ExitTime.In(loc).Format(layout), FormatCurrency(*trade.ExitPrice, currency))
	}
	if trade.PnL != nil {
		output.Printf("  P&L:        %s\n", output.FormatPnL(*trade.PnL, currency))
	}
	if d := trade.HoldDuration(); d > 0 {
		output.Printf("  Held:       %s\n", FormatDuration(d))
	}
	if trade.Reason != "" {
		output.Printf("  Reason:     %s\n", trade.Reason)
	}
	if len(trade.Emotions) > 0 {
		output.Printf("  Emotions:   %s\n", strings.Join(trade.Emotions, ", "))
	}
	if len(trade.Tags) > 0 {
		output.Printf("  Tags:       %s\n", strings.Join(trade.Tags, ", "))
	}
}

func newTradeCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <trade-id>",
		Short: "Close an open trade",
		Example: `  tradejournal trade close a1b2c3 --price 190.4
  tradejournal trade close a1b2c3 --price 175 --time "2025-06-10 15:45"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			price, _ := cmd.Flags().GetFloat64("price")
			if price <= 0 {
				return fmt.Errorf("--price must be positive")
			}
			exitTime := time.Now()
			if at, _ := cmd.Flags().GetString("time"); at != "" {
				parsed, err := time.Parse("2006-01-02 15:04", at)
				if err != nil {
					return fmt.Errorf("parsing --time: %w", err)
				}
				exitTime = parsed
			}

			if err := app.Store.CloseTrade(ctx, args[0], price, exitTime); err != nil {
				return err
			}

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade closed: %s", trade.ID)
			if trade.PnL != nil {
				output.Printf("  P&L: %s (%s)\n",
					output.FormatPnL(*trade.PnL, app.Config.Account.Currency),
					output.StatusTag(string(trade.Status)))
			}
			return nil
		},
	}

	cmd.Flags().Float64("price", 0, "Exit price (required)")
	cmd.Flags().String("time", "", "Exit time (YYYY-MM-DD HH:MM, default now)")
	cmd.MarkFlagRequired("price")

	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade and its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			if err := app.Store.DeleteTrade(ctx, args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade deleted: %s", args[0])
			return nil
		},
	}
}
