package mistakes

import (
	"sort"

	"trade-journal/internal/models"
)

// Detect runs every rule against the trade and returns the mistakes that
// fired, grouped by category in a fixed order (risk management, timing,
// psychology, strategy) with a stable order inside each group. Identical
// inputs always yield an identical list.
//
// history is the account's other trades; it should already exclude the
// trade under evaluation. The detector defensively drops the subject trade
// by ID and orders the rest by entry time descending before the
// cross-trade rules see it. Neither argument is mutated.
func (d *Detector) Detect(trade models.Trade, history []models.Trade) []Mistake {
	hist := prepareHistory(trade, history)

	var out []Mistake
	appendIf := func(m *Mistake) {
		if m != nil {
			out = append(out, *m)
		}
	}

	// Risk management
	appendIf(d.checkNoStopLoss(trade))
	appendIf(d.checkWideStopLoss(trade))
	appendIf(d.checkPoorRiskReward(trade))
	appendIf(d.checkOverLeveraged(trade))
	appendIf(d.checkNoTarget(trade))

	// Timing
	appendIf(d.checkWeekendEntry(trade))
	appendIf(d.checkLateDayEntry(trade))
	appendIf(d.checkQuickExit(trade))

	// Psychology
	appendIf(d.checkRevengeTrading(trade, hist))
	appendIf(d.checkOvertrading(trade, hist))
	appendIf(d.checkFOMO(trade))
	appendIf(d.checkEmotionalTrading(trade))

	// Strategy
	appendIf(d.checkNoTradePlan(trade))
	appendIf(d.checkCounterTrend(trade))

	return out
}

// prepareHistory copies the history, drops the subject trade by identity,
// and sorts by entry time descending so "previous trade" lookups see the
// most recent trade first.
func prepareHistory(trade models.Trade, history []models.Trade) []models.Trade {
	if len(history) == 0 {
		return nil
	}
	hist := make([]models.Trade, 0, len(history))
	for i := range history {
		if history[i].ID != "" && history[i].ID == trade.ID {
			continue
		}
		hist = append(hist, history[i])
	}
	sort.SliceStable(hist, func(i, j int) bool {
		return hist[i].EntryTime.After(hist[j].EntryTime)
	})
	return hist
}
