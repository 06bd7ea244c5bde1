package mistakes

import "time"

// Config holds the tunable thresholds of the detection engine. All rules
// read their limits from here; DefaultConfig is the canonical threshold
// table. Passing the config explicitly keeps the engine reusable across
// account sizes and markets.
type Config struct {
	// AccountSize is the assumed account equity used by the leverage check.
	AccountSize float64
	// MaxPositionPercent caps position size as a percentage of AccountSize.
	MaxPositionPercent float64
	// MaxStopPercent is the stop-loss distance (percent of entry) above
	// which a stop is considered too wide.
	MaxStopPercent float64
	// HighStopPercent escalates a wide stop to high severity.
	HighStopPercent float64
	// MinRiskReward is the minimum acceptable reward:risk ratio. Ratios
	// below HighRiskReward are flagged at high severity.
	MinRiskReward float64
	HighRiskReward float64
	// RevengeWindow is the maximum gap after a losing exit for a new entry
	// to count as revenge trading.
	RevengeWindow time.Duration
	// QuickExitWindow is the hold duration below which a losing exit is
	// considered premature.
	QuickExitWindow time.Duration
	// MaxDailyTrades is the same-day trade count above which overtrading
	// fires; HighDailyTrades escalates severity.
	MaxDailyTrades  int
	HighDailyTrades int
	// MinReasonLength is the shortest trade reason that does not look like
	// an impulse entry; PlanReasonLength is the stricter minimum the trade
	// plan rule expects.
	MinReasonLength  int
	PlanReasonLength int
	// LateEntryHour flags entries at or after this hour (market local time).
	LateEntryHour int
	// GapRiskHour flags Friday entries at or after this hour that are still
	// open, modeling weekend gap risk.
	GapRiskHour int
	// Market is the exchange's local timezone used by the timing rules.
	Market *time.Location
}

// DefaultConfig returns the canonical threshold table.
func DefaultConfig() Config {
	return Config{
		AccountSize:        100000,
		MaxPositionPercent: 10.0,
		MaxStopPercent:     5.0,
		HighStopPercent:    10.0,
		MinRiskReward:      2.0,
		HighRiskReward:     1.5,
		RevengeWindow:      30 * time.Minute,
		QuickExitWindow:    5 * time.Minute,
		MaxDailyTrades:     5,
		HighDailyTrades:    8,
		MinReasonLength:    10,
		PlanReasonLength:   20,
		LateEntryHour:      15,
		GapRiskHour:        14,
		Market:             time.UTC,
	}
}

// maxPositionSize returns the absolute position-size cap implied by the
// account size and percentage limit.
func (c Config) maxPositionSize() float64 {
	return c.AccountSize * c.MaxPositionPercent / 100
}

// market returns the configured market timezone, defaulting to UTC.
func (c Config) market() *time.Location {
	if c.Market == nil {
		return time.UTC
	}
	return c.Market
}
