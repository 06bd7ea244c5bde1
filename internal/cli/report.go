package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/mistakes"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addReportCommands adds performance report commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a performance and mistake report",
		Long: `Generate a performance report for a period.

Covers P&L statistics (win rate, profit factor, expectancy) and the
aggregate mistake exposure across all trades in the period.`,
		Example: `  tradejournal report --period weekly
  tradejournal report --period monthly --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireStore(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			period, _ := cmd.Flags().GetString("period")
			loc := app.Config.MarketLocation()
			now := time.Now().In(loc)

			var periodLabel string
			var startDate time.Time
			switch period {
			case "weekly":
				periodLabel = "Weekly"
				startDate = now.AddDate(0, 0, -7)
			case "monthly":
				periodLabel = "Monthly"
				startDate = now.AddDate(0, -1, 0)
			case "all":
				periodLabel = "All-Time"
			default:
				periodLabel = "Daily"
				startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			}

			trades, err := app.Store.GetTrades(ctx, store.TradeFilter{
				StartDate: startDate,
				EndDate:   now,
				Limit:     1000,
			})
			if err != nil {
				return err
			}
			if len(trades) == 0 {
				output.Info("No trades found for this period.")
				return nil
			}

			stats := computeStats(trades)
			mistakeSummary := app.Detector.Summarize(trades)

			if output.IsJSON() {
				return output.JSON(struct {
					Period   string           `json:"period"`
					Stats    tradeStats       `json:"stats"`
					Mistakes mistakes.Summary `json:"mistakes"`
				}{periodLabel, stats, mistakeSummary})
			}

			currency := app.Config.Account.Currency
			output.Bold("%s Performance Report", periodLabel)
			if !startDate.IsZero() {
				output.Printf("  %s to %s\n", startDate.Format(app.Config.UI.DateFormat), now.Format(app.Config.UI.DateFormat))
			}
			output.Println()

			output.Bold("Summary")
			output.Printf("  Total Trades:     %d (%d open)\n", stats.Total, stats.Open)
			output.Printf("  Wins/Losses:      %d/%d (%s win rate)\n", stats.Wins, stats.Losses, FormatWinRate(stats.Wins, stats.Closed))
			output.Printf("  Gross Profit:     %s\n", output.Green(FormatCurrency(stats.GrossProfit, currency)))
			output.Printf("  Gross Loss:       %s\n", output.Red(FormatCurrency(stats.GrossLoss, currency)))
			output.Printf("  Net P&L:          %s\n", output.FormatPnL(stats.NetPnL, currency))
			output.Println()

			output.Bold("Performance Metrics")
			output.Printf("  Profit Factor:    %.2f\n", stats.ProfitFactor)
			output.Printf("  Avg Win:          %s\n", FormatCurrency(stats.AvgWin, currency))
			output.Printf("  Avg Loss:         %s\n", FormatCurrency(stats.AvgLoss, currency))
			output.Printf("  Largest Win:      %s\n", FormatCurrency(stats.LargestWin, currency))
			output.Printf("  Largest Loss:     %s\n", FormatCurrency(stats.LargestLoss, currency))
			output.Printf("  Expectancy:       %s\n", FormatCurrency(stats.Expectancy, currency))
			output.Println()

			output.Bold("Mistake Exposure")
			output.Printf("  Total Mistakes:   %d\n", mistakeSummary.TotalMistakes)
			output.Printf("  Most Common:      %s\n", mistakeSummary.MostCommon)
			for _, cat := range []mistakes.Category{
				mistakes.CategoryRiskManagement, mistakes.CategoryTiming,
				mistakes.CategoryPsychology, mistakes.CategoryStrategy,
			} {
				if n := mistakeSummary.ByCategory[cat]; n > 0 {
					output.Printf("  %-17s %d\n", cat, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("period", "daily", "Report period (daily, weekly, monthly, all)")

	rootCmd.AddCommand(cmd)
}

// tradeStats holds P&L statistics over a set of trades.
type tradeStats struct {
	Total        int     `json:"total"`
	Open         int     `json:"open"`
	Closed       int     `json:"closed"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	GrossProfit  float64 `json:"grossProfit"`
	GrossLoss    float64 `json:"grossLoss"`
	NetPnL       float64 `json:"netPnl"`
	ProfitFactor float64 `json:"profitFactor"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"`
	LargestWin   float64 `json:"largestWin"`
	LargestLoss  float64 `json:"largestLoss"`
	Expectancy   float64 `json:"expectancy"`
}

func computeStats(trades []models.Trade) tradeStats {
	var s tradeStats
	s.Total = len(trades)

	for _, t := range trades {
		if t.PnL == nil {
			s.Open++
			continue
		}
		s.Closed++
		pnl := *t.PnL
		s.NetPnL += pnl
		switch {
		case pnl > 0:
			s.Wins++
			s.GrossProfit += pnl
			if pnl > s.LargestWin {
				s.LargestWin = pnl
			}
		case pnl < 0:
			s.Losses++
			s.GrossLoss += pnl
			if pnl < s.LargestLoss {
				s.LargestLoss = pnl
			}
		}
	}

	if s.Wins > 0 {
		s.AvgWin = s.GrossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.Losses)
	}
	if s.GrossLoss != 0 {
		s.ProfitFactor = s.GrossProfit / (-s.GrossLoss)
	}
	if s.Closed > 0 {
		s.Expectancy = s.NetPnL / float64(s.Closed)
	}
	return s
}
