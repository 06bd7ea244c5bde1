package mistakes

import (
	"testing"
	"time"

	"trade-journal/internal/models"
)

func TestSummarizeEmptyCollection(t *testing.T) {
	d := NewDetector(DefaultConfig())

	got := d.Summarize(nil)
	if got.TotalMistakes != 0 {
		t.Errorf("TotalMistakes = %d, want 0", got.TotalMistakes)
	}
	if got.MostCommon != NoMistakes {
		t.Errorf("MostCommon = %q, want %q", got.MostCommon, NoMistakes)
	}
}

func TestSummarizeCleanCollection(t *testing.T) {
	d := NewDetector(DefaultConfig())

	trades := make([]models.Trade, 3)
	for i := range trades {
		trades[i] = baseTrade()
		trades[i].ID = "t-" + string(rune('a'+i))
		// Spread across days so overtrading cannot fire.
		trades[i].EntryTime = tuesdayMorning.AddDate(0, 0, i*7)
	}

	got := d.Summarize(trades)
	if got.TotalMistakes != 0 {
		t.Errorf("TotalMistakes = %d, want 0", got.TotalMistakes)
	}
	if got.MostCommon != NoMistakes {
		t.Errorf("MostCommon = %q, want %q", got.MostCommon, NoMistakes)
	}
}

func TestSummarizeTallies(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Two trades missing stops on different weeks: each fires NO_STOPLOSS
	// (high, risk management) and NO_TRADE_PLAN (medium, strategy).
	t1 := baseTrade()
	t1.ID = "t1"
	t1.StopLoss = nil
	t2 := baseTrade()
	t2.ID = "t2"
	t2.StopLoss = nil
	t2.EntryTime = tuesdayMorning.AddDate(0, 0, 7)

	got := d.Summarize([]models.Trade{t1, t2})

	if got.TotalMistakes != 4 {
		t.Fatalf("TotalMistakes = %d, want 4", got.TotalMistakes)
	}
	if got.ByCategory[CategoryRiskManagement] != 2 {
		t.Errorf("risk management count = %d, want 2", got.ByCategory[CategoryRiskManagement])
	}
	if got.ByCategory[CategoryStrategy] != 2 {
		t.Errorf("strategy count = %d, want 2", got.ByCategory[CategoryStrategy])
	}
	if got.BySeverity[SeverityHigh] != 2 || got.BySeverity[SeverityMedium] != 2 {
		t.Errorf("severity counts = %+v", got.BySeverity)
	}
	// NO_STOPLOSS and NO_TRADE_PLAN tie at 2; lexicographic tie-break picks
	// NO_STOPLOSS.
	if got.MostCommon != RuleNoStopLoss {
		t.Errorf("MostCommon = %q, want %q", got.MostCommon, RuleNoStopLoss)
	}
}

func TestSummarizeMostCommonPrefersHigherCount(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// One trade missing only its target: fires NO_TARGET and NO_TRADE_PLAN.
	// Two trades missing only a written reason: fire FOMO_ENTRY and
	// NO_TRADE_PLAN. NO_TRADE_PLAN leads with 3.
	noTarget := baseTrade()
	noTarget.ID = "t1"
	noTarget.TargetPrice = nil

	thin1 := baseTrade()
	thin1.ID = "t2"
	thin1.Reason = ""
	thin1.EntryTime = tuesdayMorning.AddDate(0, 0, 7)

	thin2 := baseTrade()
	thin2.ID = "t3"
	thin2.Reason = ""
	thin2.EntryTime = tuesdayMorning.AddDate(0, 0, 14)

	got := d.Summarize([]models.Trade{noTarget, thin1, thin2})
	if got.MostCommon != RuleNoTradePlan {
		t.Errorf("MostCommon = %q, want %q", got.MostCommon, RuleNoTradePlan)
	}
}

func TestSummarizeUsesCollectionAsHistory(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Six clean trades on the same day: every one of them should flag
	// overtrading because the rest of the collection is its history.
	trades := make([]models.Trade, 6)
	for i := range trades {
		trades[i] = baseTrade()
		trades[i].ID = "t-" + string(rune('a'+i))
		trades[i].EntryTime = tuesdayMorning.Add(time.Duration(i) * 30 * time.Minute)
	}

	got := d.Summarize(trades)
	if got.ByCategory[CategoryPsychology] != 6 {
		t.Errorf("psychology count = %d, want 6 (one OVERTRADING per trade)", got.ByCategory[CategoryPsychology])
	}
	if got.MostCommon != RuleOvertrading {
		t.Errorf("MostCommon = %q, want %q", got.MostCommon, RuleOvertrading)
	}
}
