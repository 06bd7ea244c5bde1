package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/logging"
	"trade-journal/internal/mistakes"
	"trade-journal/internal/models"
	"trade-journal/internal/performance"
	"trade-journal/internal/store"
)

// addAnalyzeCommands adds mistake-detection commands.
func addAnalyzeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "analyze <trade-id>|all",
		Short: "Detect mistakes in journaled trades",
		Long: `Run the mistake-detection rules against one trade or the whole journal.

Rules cover risk management (missing stops, poor risk/reward, oversized
positions), timing (weekend and late-day entries, quick exits), psychology
(revenge trading, overtrading, FOMO, emotional entries) and strategy
(missing trade plans, counter-trend entries). The analysis is deterministic;
the same trade always produces the same findings.`,
		Example: `  tradejournal analyze a1b2c3
  tradejournal analyze a1b2c3 --ai --save
  tradejournal analyze all --ai --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "all" {
				return runAnalyzeAll(cmd, app)
			}
			return runAnalyzeOne(cmd, app, args[0])
		},
	}

	cmd.Flags().Bool("ai", false, "Generate an AI coaching note (requires API key)")
	cmd.Flags().Bool("save", false, "Persist the analysis alongside the trade")
	cmd.Flags().Int("workers", 4, "Workers for 'analyze all'")

	rootCmd.AddCommand(cmd)
}

// analysisResult is the JSON shape of one analyzed trade.
type analysisResult struct {
	TradeID  string             `json:"tradeId"`
	Symbol   string             `json:"symbol"`
	Mistakes []mistakes.Mistake `json:"mistakes"`
	Insight  string             `json:"insight,omitempty"`
}

func runAnalyzeOne(cmd *cobra.Command, app *App, tradeID string) error {
	output := NewOutput(cmd)
	if err := requireStore(app); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	trade, err := app.Store.GetTrade(ctx, tradeID)
	if err != nil {
		return err
	}
	history, err := app.Store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return err
	}

	found := app.Detector.Detect(*trade, history)
	logging.LogAnalysis(app.Logger, trade.ID, len(found))

	result := analysisResult{TradeID: trade.ID, Symbol: trade.Symbol, Mistakes: found}

	useAI, _ := cmd.Flags().GetBool("ai")
	if useAI {
		if app.Insights == nil {
			output.Warning("AI insights not configured. Set OPENAI_API_KEY or insights.api_key.")
		} else {
			start := time.Now()
			insight, err := app.Insights.TradeInsight(ctx, *trade, found)
			logging.LogInsight(app.Logger, trade.ID, time.Since(start), err)
			if err != nil {
				output.Warning("Insight generation failed: %v", err)
			} else {
				result.Insight = insight
			}
		}
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveAnalysis(ctx, app, result); err != nil {
			return err
		}
	}

	if output.IsJSON() {
		return output.JSON(result)
	}

	printAnalysis(output, app, trade, found)
	if result.Insight != "" {
		output.Println()
		output.Box("Coaching Note", wrapText(result.Insight, 70))
	}
	return nil
}

func saveAnalysis(ctx context.Context, app *App, result analysisResult) error {
	raw, err := json.Marshal(result.Mistakes)
	if err != nil {
		return fmt.Errorf("encoding mistakes: %w", err)
	}
	return app.Store.SaveAnalysis(ctx, &models.AnalysisRecord{
		TradeID:   result.TradeID,
		Mistakes:  raw,
		Insight:   result.Insight,
		CreatedAt: time.Now().UTC(),
	})
}

func printAnalysis(output *Output, app *App, trade *models.Trade, found []mistakes.Mistake) {
	output.Bold("Analysis: %s %s", trade.Symbol, trade.ID)
	output.Println()

	if len(found) == 0 {
		output.Success("✓ No mistakes detected")
		return
	}

	var category mistakes.Category
	for _, m := range found {
		if m.Category != category {
			category = m.Category
			output.Bold("%s", category)
		}
		output.Printf("  %s %s\n", output.SeverityTag(string(m.Severity)), m.Message)
		output.Printf("       %s\n", output.DimText(m.Suggestion))
		if m.Confidence > 0 {
			output.Printf("       %s\n", output.DimText(fmt.Sprintf("confidence %d%%", m.Confidence)))
		}
	}
	output.Println()
	output.Printf("%d mistakes found\n", len(found))
}

func runAnalyzeAll(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	if err := requireStore(app); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	trades, err := app.Store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		output.Info("No trades to analyze.")
		return nil
	}

	workers, _ := cmd.Flags().GetInt("workers")
	pool := performance.NewWorkerPool(workers)
	pool.Start()
	defer pool.Stop()

	// Each trade is analyzed against the rest of the journal. Detection is
	// pure, so trades fan out across the pool safely.
	var mu sync.Mutex
	perTrade := make(map[string][]mistakes.Mistake, len(trades))
	var wg sync.WaitGroup
	var done int

	for i := range trades {
		trade := trades[i]
		history := make([]models.Trade, 0, len(trades)-1)
		for j := range trades {
			if j != i {
				history = append(history, trades[j])
			}
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			found := app.Detector.Detect(trade, history)
			mu.Lock()
			perTrade[trade.ID] = found
			done++
			if !output.IsJSON() {
				output.Progress(done, len(trades), "Analyzing")
			}
			mu.Unlock()
		}
		if !pool.Submit(task) {
			task()
		}
	}
	wg.Wait()

	var notes map[string]string
	if useAI, _ := cmd.Flags().GetBool("ai"); useAI {
		if app.Insights == nil {
			output.Warning("AI insights not configured. Set OPENAI_API_KEY or insights.api_key.")
		} else {
			var failed map[string]error
			notes, failed = app.Insights.BulkInsights(ctx, trades, perTrade)
			for id, ferr := range failed {
				output.Warning("Insight for %s failed: %v", id, ferr)
			}
		}
	}

	save, _ := cmd.Flags().GetBool("save")
	if save {
		for _, t := range trades {
			result := analysisResult{TradeID: t.ID, Symbol: t.Symbol, Mistakes: perTrade[t.ID], Insight: notes[t.ID]}
			if err := saveAnalysis(ctx, app, result); err != nil {
				return err
			}
		}
	}

	summary := app.Detector.Summarize(trades)

	if output.IsJSON() {
		return output.JSON(struct {
			Trades   map[string][]mistakes.Mistake `json:"trades"`
			Insights map[string]string             `json:"insights,omitempty"`
			Summary  mistakes.Summary              `json:"summary"`
		}{perTrade, notes, summary})
	}

	printSummary(output, trades, perTrade, summary)
	if len(notes) > 0 {
		output.Println()
		output.Info("Generated %d coaching notes.", len(notes))
	}
	if save {
		output.Info("Saved analyses for %d trades.", len(trades))
	}
	return nil
}

func printSummary(output *Output, trades []models.Trade, perTrade map[string][]mistakes.Mistake, summary mistakes.Summary) {
	output.Println()
	output.Bold("Journal Analysis: %d trades", len(trades))
	output.Println()

	// Worst offenders first.
	type scored struct {
		trade models.Trade
		count int
	}
	ranked := make([]scored, 0, len(trades))
	for _, t := range trades {
		if n := len(perTrade[t.ID]); n > 0 {
			ranked = append(ranked, scored{t, n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })

	if len(ranked) > 0 {
		table := NewTable(output, "Trade", "Symbol", "Mistakes", "Worst")
		limit := len(ranked)
		if limit > 10 {
			limit = 10
		}
		for _, r := range ranked[:limit] {
			worst := ""
			for _, m := range perTrade[r.trade.ID] {
				if m.Severity == mistakes.SeverityHigh {
					worst = m.ID
					break
				}
			}
			if worst == "" {
				worst = perTrade[r.trade.ID][0].ID
			}
			table.AddRow(TruncateString(r.trade.ID, 10), r.trade.Symbol, fmt.Sprintf("%d", r.count), worst)
		}
		table.Render()
		output.Println()
	}

	output.Bold("Totals")
	output.Printf("  Mistakes:    %d\n", summary.TotalMistakes)
	output.Printf("  Most common: %s\n", summary.MostCommon)
	for _, cat := range []mistakes.Category{
		mistakes.CategoryRiskManagement, mistakes.CategoryTiming,
		mistakes.CategoryPsychology, mistakes.CategoryStrategy,
	} {
		if n := summary.ByCategory[cat]; n > 0 {
			output.Printf("  %-16s %d\n", cat, n)
		}
	}
	for _, sev := range []mistakes.Severity{mistakes.SeverityHigh, mistakes.SeverityMedium, mistakes.SeverityLow} {
		if n := summary.BySeverity[sev]; n > 0 {
			output.Printf("  %s %d\n", PadRight(string(sev), 16), n)
		}
	}
}

// wrapText splits text into lines no longer than width.
func wrapText(text string, width int) []string {
	var lines []string
	var line string
	for _, word := range splitWords(text) {
		if line == "" {
			line = word
		} else if len(line)+1+len(word) <= width {
			line += " " + word
		} else {
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func splitWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}
