package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal notes",
		Long:  "Record and review free-form journal notes, optionally linked to trades.",
	}

	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalTodayCmd(app))
	cmd.AddCommand(newJournalSearchCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a journal note",
		Example: `  tradejournal journal add "Forced two entries out of boredom today"
  tradejournal journal add "Good patience on the AAPL setup" --trade a1b2c3 --mood calm --tags discipline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			tradeID, _ := cmd.Flags().GetString("trade")
			mood, _ := cmd.Flags().GetString("mood")
			tags, _ := cmd.Flags().GetStringSlice("tags")

			// A linked trade must exist.
			if tradeID != "" {
				if _, err := app.Store.GetTrade(ctx, tradeID); err != nil {
					return err
				}
			}

			now := time.Now().UTC()
			entry := &models.JournalEntry{
				ID:        uuid.NewString(),
				TradeID:   tradeID,
				Date:      now,
				Content:   args[0],
				Tags:      tags,
				Mood:      mood,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := app.Store.SaveJournalEntry(ctx, entry); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(entry)
			}
			output.Success("✓ Note saved: %s", entry.ID)
			return nil
		},
	}

	cmd.Flags().String("trade", "", "Link the note to a trade ID")
	cmd.Flags().String("mood", "", "Mood while writing (calm, frustrated, ...)")
	cmd.Flags().StringSlice("tags", nil, "Tags (comma separated)")

	return cmd
}

func newJournalTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's trades and notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			loc := app.Config.MarketLocation()
			now := time.Now().In(loc)
			startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			endOfDay := startOfDay.Add(24 * time.Hour)

			trades, err := app.Store.GetTrades(ctx, store.TradeFilter{
				StartDate: startOfDay,
				EndDate:   endOfDay,
				Limit:     100,
			})
			if err != nil {
				return err
			}
			entries, err := app.Store.GetJournal(ctx, store.JournalFilter{
				StartDate: startOfDay,
				EndDate:   endOfDay,
				Limit:     50,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(struct {
					Trades  []models.Trade        `json:"trades"`
					Entries []models.JournalEntry `json:"entries"`
				}{trades, entries})
			}

			output.Bold("Trading Journal - %s", now.Format(app.Config.UI.DateFormat))
			output.Println()

			if len(trades) == 0 {
				output.Info("No trades recorded today.")
			} else {
				var totalPnL float64
				var wins, closed int
				table := NewTable(output, "Time", "Symbol", "Type", "Qty", "Entry", "Status", "P&L")
				for _, t := range trades {
					pnl := ""
					if t.PnL != nil {
						totalPnL += *t.PnL
						closed++
						if *t.PnL > 0 {
							wins++
						}
						pnl = output.FormatPnL(*t.PnL, app.Config.Account.Currency)
					}
					table.AddRow(
						t.EntryTime.In(loc).Format(app.Config.UI.TimeFormat),
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
				output.Printf("  Trades:   %d\n", len(trades))
				output.Printf("  Win rate: %s\n", FormatWinRate(wins, closed))
				output.Printf("  Net P&L:  %s\n", output.FormatPnL(totalPnL, app.Config.Account.Currency))
			}

			if len(entries) > 0 {
				output.Println()
				output.Bold("Notes")
				for _, e := range entries {
					mood := ""
					if e.Mood != "" {
						mood = " (" + e.Mood + ")"
					}
					output.Printf("  %s%s %s\n", e.Date.In(loc).Format(app.Config.UI.TimeFormat), mood, e.Content)
				}
			}

			return nil
		},
	}
}

func newJournalSearchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search journal notes",
		Long:  "Search journal notes by content, tag, or linked trade.",
		Example: `  tradejournal journal search breakout
  tradejournal journal search --tag discipline
  tradejournal journal search --trade a1b2c3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()

			tag, _ := cmd.Flags().GetString("tag")
			tradeID, _ := cmd.Flags().GetString("trade")
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			entries, err := app.Store.GetJournal(ctx, store.JournalFilter{
				TradeID: tradeID,
				Limit:   200,
			})
			if err != nil {
				return err
			}

			var matched []models.JournalEntry
			for _, e := range entries {
				if query != "" && !containsIgnoreCase(e.Content, query) {
					continue
				}
				if tag != "" && !hasTag(e.Tags, tag) {
					continue
				}
				matched = append(matched, e)
			}

			if output.IsJSON() {
				return output.JSON(matched)
			}
			if len(matched) == 0 {
				output.Info("No matching notes found.")
				return nil
			}

			loc := app.Config.MarketLocation()
			table := NewTable(output, "Date", "Trade", "Mood", "Content")
			for _, e := range matched {
				table.AddRow(
					e.Date.In(loc).Format(app.Config.UI.DateFormat),
					TruncateString(e.TradeID, 10),
					e.Mood,
					TruncateString(e.Content, 50),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d notes", len(matched))
			return nil
		},
	}

	cmd.Flags().String("tag", "", "Filter by tag")
	cmd.Flags().String("trade", "", "Filter by linked trade ID")

	return cmd
}

// containsIgnoreCase checks if s contains substr (case-insensitive)
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
