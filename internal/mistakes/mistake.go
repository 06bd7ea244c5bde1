// Package mistakes implements the rule-based trade-mistake detection engine.
// It is pure computation: rules inspect a trade (and, for cross-trade rules,
// the account's trade history) and report deviations from risk, timing,
// psychology, and strategy best practices. The package performs no I/O and
// never mutates its inputs.
package mistakes

// Category groups rules by the discipline they enforce.
type Category string

const (
	CategoryRiskManagement Category = "RISK_MANAGEMENT"
	CategoryTiming         Category = "TIMING"
	CategoryPsychology     Category = "PSYCHOLOGY"
	CategoryStrategy       Category = "STRATEGY"
)

// Severity expresses how damaging a detected mistake is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rule identifiers. Each is stable and unique per rule; downstream
// aggregation and persisted analyses key on them.
const (
	RuleNoStopLoss     = "NO_STOPLOSS"
	RuleWideStopLoss   = "WIDE_STOPLOSS"
	RulePoorRiskReward = "POOR_RISK_REWARD"
	RuleOverLeveraged  = "OVER_LEVERAGED"
	RuleNoTarget       = "NO_TARGET"
	RuleWeekendEntry   = "WEEKEND_ENTRY"
	RuleLateDayEntry   = "LATE_DAY_ENTRY"
	RuleQuickExit      = "QUICK_EXIT"
	RuleRevengeTrading = "REVENGE_TRADING"
	RuleOvertrading    = "OVERTRADING"
	RuleFOMOEntry      = "FOMO_ENTRY"
	RuleEmotional      = "EMOTIONAL_TRADING"
	RuleNoTradePlan    = "NO_TRADE_PLAN"
	RuleCounterTrend   = "COUNTER_TREND"
)

// Mistake is a single flagged issue produced by one rule. Instances are
// ephemeral: constructed fresh per detection call and never retained by
// the engine itself.
type Mistake struct {
	ID         string   `json:"id"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
	Confidence int      `json:"confidence,omitempty"` // 0-100, set by rules that grade certainty
}
