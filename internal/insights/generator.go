package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"trade-journal/internal/errors"
	"trade-journal/internal/mistakes"
	"trade-journal/internal/models"
	"trade-journal/internal/performance"
	"trade-journal/pkg/utils"
)

const systemPrompt = `You are a trading coach reviewing a journaled trade.
You are given the trade details and the mistakes flagged by a rule engine.
Write a short, direct coaching note (3-5 sentences) for the trader.
Focus on the most severe mistakes first. Do not invent mistakes that were
not flagged. If no mistakes were flagged, point out what was done well.`

// Generator turns detected mistakes into AI coaching notes. Calls are
// rate limited and retried.
type Generator struct {
	llm      LLMClient
	limiter  *performance.RateLimiter
	retryCfg utils.RetryConfig
	logger   zerolog.Logger
}

// NewGenerator creates an insight generator. requestsPerMinute bounds the
// sustained call rate against the LLM provider.
func NewGenerator(llm LLMClient, requestsPerMinute int, logger zerolog.Logger) *Generator {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	return &Generator{
		llm:      llm,
		limiter:  performance.NewRateLimiter(float64(requestsPerMinute)/60.0, requestsPerMinute),
		retryCfg: utils.DefaultRetryConfig(),
		logger:   logger,
	}
}

// TradeInsight generates a coaching note for one analyzed trade.
func (g *Generator) TradeInsight(ctx context.Context, trade models.Trade, found []mistakes.Mistake) (string, error) {
	if g.llm == nil {
		return "", errors.ErrNoAPIKey
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "waiting for insight rate limit")
	}

	prompt := buildPrompt(trade, found)
	insight, err := utils.RetryWithResult(ctx, g.retryCfg, func() (string, error) {
		return g.llm.CompleteWithSystem(ctx, systemPrompt, prompt)
	})
	if err != nil {
		return "", errors.NewInsightError(trade.ID, "generating coaching note", err)
	}

	g.logger.Debug().
		Str("trade_id", trade.ID).
		Int("mistakes", len(found)).
		Msg("Insight generated")

	return strings.TrimSpace(insight), nil
}

// BulkInsights generates notes for several trades sequentially, respecting
// the rate limit. Failures are collected per trade rather than aborting
// the batch.
func (g *Generator) BulkInsights(ctx context.Context, trades []models.Trade, found map[string][]mistakes.Mistake) (map[string]string, map[string]error) {
	results := make(map[string]string, len(trades))
	failures := make(map[string]error)

	for _, trade := range trades {
		insight, err := g.TradeInsight(ctx, trade, found[trade.ID])
		if err != nil {
			if ctx.Err() != nil {
				failures[trade.ID] = ctx.Err()
				break
			}
			failures[trade.ID] = err
			continue
		}
		results[trade.ID] = insight
	}
	return results, failures
}

func buildPrompt(trade models.Trade, found []mistakes.Mistake) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trade: %s %s, entry %.2f, quantity %d, position size %.2f\n",
		trade.Type, trade.Symbol, trade.EntryPrice, trade.Quantity, trade.PositionSize)
	fmt.Fprintf(&b, "Entered: %s\n", trade.EntryTime.Format("Mon 2006-01-02 15:04"))
	if trade.StopLoss != nil {
		fmt.Fprintf(&b, "Stop loss: %.2f\n", *trade.StopLoss)
	}
	if trade.TargetPrice != nil {
		fmt.Fprintf(&b, "Target: %.2f\n", *trade.TargetPrice)
	}
	if trade.IsClosed() && trade.PnL != nil {
		fmt.Fprintf(&b, "Closed with P&L: %.2f\n", *trade.PnL)
	}
	if trade.Reason != "" {
		fmt.Fprintf(&b, "Stated reason: %s\n", trade.Reason)
	}
	if len(trade.Emotions) > 0 {
		fmt.Fprintf(&b, "Emotions: %s\n", strings.Join(trade.Emotions, ", "))
	}

	if len(found) == 0 {
		b.WriteString("\nNo mistakes were flagged on this trade.\n")
		return b.String()
	}

	b.WriteString("\nFlagged mistakes:\n")
	for _, m := range found {
		fmt.Fprintf(&b, "- [%s/%s] %s: %s\n", m.Category, m.Severity, m.ID, m.Message)
	}
	return b.String()
}
