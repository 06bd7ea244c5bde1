package mistakes

import (
	"sort"

	"trade-journal/internal/models"
)

// NoMistakes is the MostCommon sentinel when no rule fired over the
// whole collection.
const NoMistakes = "None"

// Summary is the aggregate mistake exposure over a trade collection.
type Summary struct {
	TotalMistakes int              `json:"totalMistakes"`
	ByCategory    map[Category]int `json:"byCategory"`
	BySeverity    map[Severity]int `json:"bySeverity"`
	MostCommon    string           `json:"mostCommon"`
}

// Summarize runs the detector over every trade in the collection (each one
// evaluated against the rest as history) and tallies the results. Nothing
// is cached between calls; collections are small enough that recomputing
// from scratch is the simpler and safer choice.
func (d *Detector) Summarize(trades []models.Trade) Summary {
	summary := Summary{
		ByCategory: make(map[Category]int),
		BySeverity: make(map[Severity]int),
		MostCommon: NoMistakes,
	}

	byRule := make(map[string]int)
	for i := range trades {
		history := otherTrades(trades, i)
		for _, m := range d.Detect(trades[i], history) {
			summary.TotalMistakes++
			summary.ByCategory[m.Category]++
			summary.BySeverity[m.Severity]++
			byRule[m.ID]++
		}
	}

	if id := mostCommonRule(byRule); id != "" {
		summary.MostCommon = id
	}
	return summary
}

// otherTrades returns the collection minus the trade at index i.
func otherTrades(trades []models.Trade, i int) []models.Trade {
	if len(trades) <= 1 {
		return nil
	}
	out := make([]models.Trade, 0, len(trades)-1)
	out = append(out, trades[:i]...)
	out = append(out, trades[i+1:]...)
	return out
}

// mostCommonRule picks the rule id with the highest count. Ties break
// lexicographically by id so the result is deterministic regardless of map
// iteration order. Returns "" when no rule fired.
func mostCommonRule(byRule map[string]int) string {
	ids := make([]string, 0, len(byRule))
	for id := range byRule {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if byRule[ids[i]] != byRule[ids[j]] {
			return byRule[ids[i]] > byRule[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
