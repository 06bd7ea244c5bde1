package mistakes

import (
	"fmt"
	"math"
	"strings"
	"time"

	"trade-journal/internal/models"
)

// negativeEmotions is the vocabulary the emotional-trading rule matches
// against (case-insensitive).
var negativeEmotions = []string{"fear", "panic", "desperate", "frustrated", "angry", "rushed"}

// Detector evaluates trades against the rule set. It is stateless apart
// from its configuration and safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Config returns the detector's threshold table.
func (d *Detector) Config() Config {
	return d.cfg
}

// ---- Risk management rules ----

// checkNoStopLoss fires when an open position has no stop-loss protection.
func (d *Detector) checkNoStopLoss(t models.Trade) *Mistake {
	if t.StopLoss != nil || t.ExitPrice != nil {
		return nil
	}
	return &Mistake{
		ID:         RuleNoStopLoss,
		Category:   CategoryRiskManagement,
		Severity:   SeverityHigh,
		Message:    fmt.Sprintf("Open %s position on %s has no stop loss", t.Type, t.Symbol),
		Suggestion: "Always set a stop loss before entering a trade. Define your maximum acceptable loss up front.",
	}
}

// checkWideStopLoss fires when the stop sits too far from the entry.
func (d *Detector) checkWideStopLoss(t models.Trade) *Mistake {
	if t.StopLoss == nil || t.EntryPrice == 0 {
		return nil
	}
	riskPct := math.Abs(t.EntryPrice-*t.StopLoss) / t.EntryPrice * 100
	if riskPct <= d.cfg.MaxStopPercent {
		return nil
	}
	severity := SeverityMedium
	if riskPct > d.cfg.HighStopPercent {
		severity = SeverityHigh
	}
	return &Mistake{
		ID:       RuleWideStopLoss,
		Category: CategoryRiskManagement,
		Severity: severity,
		Message: fmt.Sprintf("Stop loss is %.1f%% away from entry (limit %.1f%%)",
			riskPct, d.cfg.MaxStopPercent),
		Suggestion: "Tighten the stop or reduce position size so a single trade cannot do outsized damage.",
	}
}

// checkPoorRiskReward fires when the reward:risk ratio falls below the
// minimum. Evaluated only when both stop loss and target are set; a ratio
// of exactly the minimum does not fire.
func (d *Detector) checkPoorRiskReward(t models.Trade) *Mistake {
	if t.StopLoss == nil || t.TargetPrice == nil {
		return nil
	}
	risk := math.Abs(t.EntryPrice - *t.StopLoss)
	if risk == 0 {
		return nil
	}
	ratio := math.Abs(*t.TargetPrice-t.EntryPrice) / risk
	if ratio >= d.cfg.MinRiskReward {
		return nil
	}
	severity := SeverityMedium
	if ratio < d.cfg.HighRiskReward {
		severity = SeverityHigh
	}
	return &Mistake{
		ID:       RulePoorRiskReward,
		Category: CategoryRiskManagement,
		Severity: severity,
		Message: fmt.Sprintf("Risk:reward ratio is 1:%.2f, below the 1:%.1f minimum",
			ratio, d.cfg.MinRiskReward),
		Suggestion: "Look for setups where the target is at least twice as far as the stop. Skip trades that don't offer it.",
	}
}

// checkOverLeveraged fires when the position size exceeds the configured
// share of the account.
func (d *Detector) checkOverLeveraged(t models.Trade) *Mistake {
	limit := d.cfg.maxPositionSize()
	if limit <= 0 || t.PositionSize <= limit {
		return nil
	}
	return &Mistake{
		ID:       RuleOverLeveraged,
		Category: CategoryRiskManagement,
		Severity: SeverityHigh,
		Message: fmt.Sprintf("Position size %.2f exceeds %.0f%% of account (%.2f)",
			t.PositionSize, d.cfg.MaxPositionPercent, limit),
		Suggestion: "Size positions so no single trade risks a large share of the account.",
	}
}

// checkNoTarget fires when an open position has no profit target.
func (d *Detector) checkNoTarget(t models.Trade) *Mistake {
	if t.TargetPrice != nil || t.ExitPrice != nil {
		return nil
	}
	return &Mistake{
		ID:         RuleNoTarget,
		Category:   CategoryRiskManagement,
		Severity:   SeverityMedium,
		Message:    fmt.Sprintf("Open position on %s has no profit target", t.Symbol),
		Suggestion: "Decide where you will take profit before entering, not after the price starts moving.",
	}
}

// ---- Timing rules ----

// checkWeekendEntry fires on weekend entries, and on late-Friday entries
// still held open into the weekend (gap risk).
func (d *Detector) checkWeekendEntry(t models.Trade) *Mistake {
	local := t.EntryTime.In(d.cfg.market())
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return &Mistake{
			ID:         RuleWeekendEntry,
			Category:   CategoryTiming,
			Severity:   SeverityMedium,
			Message:    fmt.Sprintf("Trade entered on %s, an illiquid session", local.Weekday()),
			Suggestion: "Avoid entering during illiquid weekend sessions; spreads widen and fills degrade.",
		}
	case time.Friday:
		if local.Hour() >= d.cfg.GapRiskHour && t.ExitPrice == nil {
			return &Mistake{
				ID:         RuleWeekendEntry,
				Category:   CategoryTiming,
				Severity:   SeverityLow,
				Message:    "Late-Friday entry still open over the weekend gap",
				Suggestion: "Close late-Friday entries before the weekend or size them for gap risk.",
			}
		}
	}
	return nil
}

// checkLateDayEntry fires when the entry lands in the final session hours.
func (d *Detector) checkLateDayEntry(t models.Trade) *Mistake {
	local := t.EntryTime.In(d.cfg.market())
	if local.Hour() < d.cfg.LateEntryHour {
		return nil
	}
	return &Mistake{
		ID:         RuleLateDayEntry,
		Category:   CategoryTiming,
		Severity:   SeverityLow,
		Message:    fmt.Sprintf("Trade entered at %02d:%02d, late in the session", local.Hour(), local.Minute()),
		Suggestion: "Late-session entries leave little room for the setup to work. Prefer earlier entries.",
	}
}

// checkQuickExit fires when a losing trade was abandoned within minutes of
// entry, a sign of panic rather than plan.
func (d *Detector) checkQuickExit(t models.Trade) *Mistake {
	if t.ExitTime == nil || t.PnL == nil || *t.PnL >= 0 {
		return nil
	}
	held := t.ExitTime.Sub(t.EntryTime)
	if held < 0 || held >= d.cfg.QuickExitWindow {
		return nil
	}
	return &Mistake{
		ID:       RuleQuickExit,
		Category: CategoryTiming,
		Severity: SeverityMedium,
		Message: fmt.Sprintf("Losing trade exited after only %.0f minutes",
			held.Minutes()),
		Suggestion: "Give trades room to develop. If the stop wasn't hit, the exit wasn't part of the plan.",
	}
}

// ---- Psychology rules ----

// checkRevengeTrading fires when a trade opens shortly after a loss with
// equal or larger size, or is explicitly tagged as revenge.
func (d *Detector) checkRevengeTrading(t models.Trade, history []models.Trade) *Mistake {
	if t.HasTag("revenge") {
		return &Mistake{
			ID:         RuleRevengeTrading,
			Category:   CategoryPsychology,
			Severity:   SeverityHigh,
			Message:    "Trade tagged as revenge trading",
			Suggestion: "Step away after a loss. Re-enter only when the setup, not the loss, justifies it.",
			Confidence: 100,
		}
	}

	prev := previousTrade(t, history)
	if prev == nil || prev.PnL == nil || *prev.PnL >= 0 {
		return nil
	}
	ref := prev.EntryTime
	if prev.ExitTime != nil {
		ref = *prev.ExitTime
	}
	gap := t.EntryTime.Sub(ref)
	if gap < 0 || gap >= d.cfg.RevengeWindow {
		return nil
	}
	if t.PositionSize < prev.PositionSize {
		return nil
	}
	return &Mistake{
		ID:       RuleRevengeTrading,
		Category: CategoryPsychology,
		Severity: SeverityHigh,
		Message: fmt.Sprintf("Entered %.0f minutes after a %.2f loss with equal or larger size",
			gap.Minutes(), *prev.PnL),
		Suggestion: "Step away after a loss. Re-enter only when the setup, not the loss, justifies it.",
		Confidence: 80,
	}
}

// checkOvertrading fires when the same-day trade count (including the trade
// under evaluation) exceeds the daily cap.
func (d *Detector) checkOvertrading(t models.Trade, history []models.Trade) *Mistake {
	loc := d.cfg.market()
	y, m, day := t.EntryTime.In(loc).Date()

	count := 1 // the trade under evaluation
	for i := range history {
		hy, hm, hd := history[i].EntryTime.In(loc).Date()
		if hy == y && hm == m && hd == day {
			count++
		}
	}
	if count <= d.cfg.MaxDailyTrades {
		return nil
	}
	severity := SeverityMedium
	if count >= d.cfg.HighDailyTrades {
		severity = SeverityHigh
	}
	return &Mistake{
		ID:       RuleOvertrading,
		Category: CategoryPsychology,
		Severity: severity,
		Message: fmt.Sprintf("%d trades entered on the same day (limit %d)",
			count, d.cfg.MaxDailyTrades),
		Suggestion: "Set a daily trade cap and stop when you hit it. More trades rarely means more edge.",
	}
}

// checkFOMO fires on explicit fomo/rushed tagging or an entry with no real
// reasoning behind it.
func (d *Detector) checkFOMO(t models.Trade) *Mistake {
	tagged := t.HasTag("fomo") || t.HasEmotion("fomo") || t.HasEmotion("rushed")
	thinReason := len(strings.TrimSpace(t.Reason)) < d.cfg.MinReasonLength
	if !tagged && !thinReason {
		return nil
	}
	confidence := 70
	message := "Trade entered without a substantive reason, a common FOMO signature"
	if tagged {
		confidence = 95
		message = "Trade marked with fomo/rushed, indicating a fear-of-missing-out entry"
	}
	return &Mistake{
		ID:         RuleFOMOEntry,
		Category:   CategoryPsychology,
		Severity:   SeverityHigh,
		Message:    message,
		Suggestion: "If you can't write down why you're entering, don't enter. The market will offer another setup.",
		Confidence: confidence,
	}
}

// checkEmotionalTrading fires when the logged emotions intersect the
// negative-emotion vocabulary.
func (d *Detector) checkEmotionalTrading(t models.Trade) *Mistake {
	var matched []string
	for _, neg := range negativeEmotions {
		if t.HasEmotion(neg) {
			matched = append(matched, neg)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return &Mistake{
		ID:         RuleEmotional,
		Category:   CategoryPsychology,
		Severity:   SeverityMedium,
		Message:    fmt.Sprintf("Trade entered while feeling %s", strings.Join(matched, ", ")),
		Suggestion: "Log the emotion, then wait it out. Trade the plan, not the mood.",
	}
}

// ---- Strategy rules ----

// checkNoTradePlan fires when the entry lacks the elements of a written
// plan: an adequate reason, a stop loss, and a target.
func (d *Detector) checkNoTradePlan(t models.Trade) *Mistake {
	var missing []string
	if len(strings.TrimSpace(t.Reason)) < d.cfg.PlanReasonLength {
		missing = append(missing, "a written reason")
	}
	if t.StopLoss == nil {
		missing = append(missing, "a stop loss")
	}
	if t.TargetPrice == nil {
		missing = append(missing, "a profit target")
	}
	if len(missing) == 0 {
		return nil
	}
	severity := SeverityMedium
	if len(missing) >= 2 {
		severity = SeverityHigh
	}
	return &Mistake{
		ID:         RuleNoTradePlan,
		Category:   CategoryStrategy,
		Severity:   severity,
		Message:    fmt.Sprintf("Trade is missing %s", strings.Join(missing, ", ")),
		Suggestion: "Write entry reason, stop, and target before the trade. A plan you can't state isn't a plan.",
	}
}

// checkCounterTrend fires when the trader tagged the trade as fighting the
// prevailing trend. The engine does not derive trend direction itself.
func (d *Detector) checkCounterTrend(t models.Trade) *Mistake {
	if !t.HasTag("counter-trend") {
		return nil
	}
	return &Mistake{
		ID:         RuleCounterTrend,
		Category:   CategoryStrategy,
		Severity:   SeverityMedium,
		Message:    "Trade tagged as counter-trend",
		Suggestion: "Counter-trend trades need tighter stops and smaller size. Make sure this one has both.",
	}
}

// previousTrade returns the most recent trade that entered before t, given
// history sorted by entry time descending.
func previousTrade(t models.Trade, history []models.Trade) *models.Trade {
	for i := range history {
		if history[i].EntryTime.Before(t.EntryTime) {
			return &history[i]
		}
	}
	return nil
}
