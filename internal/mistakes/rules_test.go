package mistakes

import (
	"testing"
	"time"

	"trade-journal/internal/models"
)

// Tuesday 10:00 UTC, a boring weekday mid-session entry.
var tuesdayMorning = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

// baseTrade returns a trade that fires no rules against DefaultConfig:
// 2% stop, 1:3 reward, small size, written reason, weekday morning entry.
func baseTrade() models.Trade {
	return models.Trade{
		ID:           "t-base",
		Symbol:       "AAPL",
		Type:         models.TradeLong,
		EntryPrice:   100,
		StopLoss:     f64(98),
		TargetPrice:  f64(106),
		Quantity:     10,
		PositionSize: 1000,
		Status:       models.StatusOpen,
		EntryTime:    tuesdayMorning,
		Reason:       "Breakout above resistance with volume confirmation",
	}
}

func findMistake(list []Mistake, id string) *Mistake {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func TestNoStopLoss(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		stop     *float64
		exit     *float64
		wantFire bool
	}{
		{"open without stop fires", nil, nil, true},
		{"stop present never fires", f64(98), nil, false},
		{"closed without stop does not fire", nil, f64(104), false},
		{"closed with stop does not fire", f64(98), f64(104), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.StopLoss = tt.stop
			tr.ExitPrice = tt.exit
			got := d.checkNoStopLoss(tr)
			if (got != nil) != tt.wantFire {
				t.Errorf("checkNoStopLoss fired=%v, want %v", got != nil, tt.wantFire)
			}
			if got != nil && got.Severity != SeverityHigh {
				t.Errorf("severity = %s, want high", got.Severity)
			}
		})
	}
}

func TestWideStopLoss(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		stop     *float64
		wantFire bool
		wantSev  Severity
	}{
		{"no stop never fires", nil, false, ""},
		{"2% stop does not fire", f64(98), false, ""},
		{"exactly 5% does not fire", f64(95), false, ""},
		{"7% stop fires medium", f64(93), true, SeverityMedium},
		{"12% stop fires high", f64(88), true, SeverityHigh},
		{"short side 7% fires too", f64(107), true, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.StopLoss = tt.stop
			got := d.checkWideStopLoss(tr)
			if (got != nil) != tt.wantFire {
				t.Fatalf("fired=%v, want %v", got != nil, tt.wantFire)
			}
			if got != nil && got.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSev)
			}
		})
	}
}

func TestPoorRiskReward(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		stop     *float64
		target   *float64
		wantFire bool
		wantSev  Severity
	}{
		{"missing stop skips", nil, f64(106), false, ""},
		{"missing target skips", f64(98), nil, false, ""},
		{"ratio 3.0 does not fire", f64(98), f64(106), false, ""},
		{"ratio exactly 2.0 does not fire", f64(98), f64(104), false, ""},
		{"ratio 1.75 fires medium", f64(96), f64(107), true, SeverityMedium},
		{"ratio 1.0 fires high", f64(98), f64(102), true, SeverityHigh},
		{"zero risk skips", f64(100), f64(106), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.StopLoss = tt.stop
			tr.TargetPrice = tt.target
			got := d.checkPoorRiskReward(tr)
			if (got != nil) != tt.wantFire {
				t.Fatalf("fired=%v, want %v", got != nil, tt.wantFire)
			}
			if got != nil && got.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSev)
			}
		})
	}
}

func TestOverLeveraged(t *testing.T) {
	d := NewDetector(DefaultConfig()) // 10% of 100k = 10000 cap

	tests := []struct {
		name     string
		size     float64
		wantFire bool
	}{
		{"small position", 1000, false},
		{"exactly at cap", 10000, false},
		{"just above cap", 10001, true},
		{"way above cap", 1000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.PositionSize = tt.size
			got := d.checkOverLeveraged(tr)
			if (got != nil) != tt.wantFire {
				t.Errorf("fired=%v, want %v", got != nil, tt.wantFire)
			}
		})
	}
}

func TestNoTarget(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tr := baseTrade()
	tr.TargetPrice = nil
	if d.checkNoTarget(tr) == nil {
		t.Error("open trade without target should fire")
	}

	tr.ExitPrice = f64(104)
	if d.checkNoTarget(tr) != nil {
		t.Error("closed trade should not fire")
	}

	tr = baseTrade()
	if d.checkNoTarget(tr) != nil {
		t.Error("trade with target should not fire")
	}
}

func TestWeekendEntry(t *testing.T) {
	d := NewDetector(DefaultConfig())

	saturday := time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	fridayLate := time.Date(2025, 6, 13, 14, 30, 0, 0, time.UTC)
	fridayMorning := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    time.Time
		exit     *float64
		wantFire bool
		wantSev  Severity
	}{
		{"saturday fires medium", saturday, nil, true, SeverityMedium},
		{"sunday fires medium", sunday, nil, true, SeverityMedium},
		{"late friday open fires low", fridayLate, nil, true, SeverityLow},
		{"late friday closed does not fire", fridayLate, f64(104), false, ""},
		{"friday morning does not fire", fridayMorning, nil, false, ""},
		{"tuesday does not fire", tuesdayMorning, nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.EntryTime = tt.entry
			tr.ExitPrice = tt.exit
			got := d.checkWeekendEntry(tr)
			if (got != nil) != tt.wantFire {
				t.Fatalf("fired=%v, want %v", got != nil, tt.wantFire)
			}
			if got != nil && got.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSev)
			}
		})
	}
}

func TestLateDayEntry(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tr := baseTrade()
	tr.EntryTime = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	if d.checkLateDayEntry(tr) == nil {
		t.Error("15:00 entry should fire")
	}

	tr.EntryTime = time.Date(2025, 6, 10, 14, 59, 0, 0, time.UTC)
	if d.checkLateDayEntry(tr) != nil {
		t.Error("14:59 entry should not fire")
	}
}

func TestLateDayEntryUsesMarketTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	cfg := DefaultConfig()
	cfg.Market = ny
	d := NewDetector(cfg)

	// 19:30 UTC is 15:30 in New York (June, EDT).
	tr := baseTrade()
	tr.EntryTime = time.Date(2025, 6, 10, 19, 30, 0, 0, time.UTC)
	if d.checkLateDayEntry(tr) == nil {
		t.Error("15:30 market time should fire even though UTC hour is 19")
	}
}

func TestQuickExit(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		held     time.Duration
		pnl      *float64
		wantFire bool
	}{
		{"3 minute loss fires", 3 * time.Minute, f64(-40), true},
		{"exactly 5 minutes does not fire", 5 * time.Minute, f64(-40), false},
		{"3 minute win does not fire", 3 * time.Minute, f64(40), false},
		{"missing pnl does not fire", 3 * time.Minute, nil, false},
		{"long hold loss does not fire", 2 * time.Hour, f64(-40), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			exit := tr.EntryTime.Add(tt.held)
			tr.ExitTime = tptr(exit)
			tr.ExitPrice = f64(99)
			tr.PnL = tt.pnl
			got := d.checkQuickExit(tr)
			if (got != nil) != tt.wantFire {
				t.Errorf("fired=%v, want %v", got != nil, tt.wantFire)
			}
		})
	}

	t.Run("open trade never fires", func(t *testing.T) {
		tr := baseTrade()
		tr.PnL = f64(-40)
		if d.checkQuickExit(tr) != nil {
			t.Error("trade without exit time should not fire")
		}
	})
}

func TestRevengeTrading(t *testing.T) {
	d := NewDetector(DefaultConfig())

	lossExit := tuesdayMorning
	prevLoss := models.Trade{
		ID:           "t-prev",
		Symbol:       "AAPL",
		EntryPrice:   100,
		PositionSize: 1000,
		PnL:          f64(-50),
		EntryTime:    lossExit.Add(-time.Hour),
		ExitTime:     tptr(lossExit),
	}

	newTrade := func(gap time.Duration, size float64) models.Trade {
		tr := baseTrade()
		tr.ID = "t-new"
		tr.EntryTime = lossExit.Add(gap)
		tr.PositionSize = size
		return tr
	}

	tests := []struct {
		name     string
		trade    models.Trade
		history  []models.Trade
		wantFire bool
	}{
		{"29 min after loss, same size", newTrade(29*time.Minute, 1000), []models.Trade{prevLoss}, true},
		{"29 min after loss, larger size", newTrade(29*time.Minute, 2000), []models.Trade{prevLoss}, true},
		{"31 min after loss", newTrade(31*time.Minute, 1000), []models.Trade{prevLoss}, false},
		{"29 min but smaller size", newTrade(29*time.Minute, 500), []models.Trade{prevLoss}, false},
		{"empty history", newTrade(10*time.Minute, 1000), nil, false},
		{"previous trade won", newTrade(10*time.Minute, 1000), []models.Trade{func() models.Trade {
			p := prevLoss
			p.PnL = f64(75)
			return p
		}()}, false},
		{"previous pnl missing", newTrade(10*time.Minute, 1000), []models.Trade{func() models.Trade {
			p := prevLoss
			p.PnL = nil
			return p
		}()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.checkRevengeTrading(tt.trade, prepareHistory(tt.trade, tt.history))
			if (got != nil) != tt.wantFire {
				t.Errorf("fired=%v, want %v", got != nil, tt.wantFire)
			}
		})
	}

	t.Run("revenge tag fires without history", func(t *testing.T) {
		tr := baseTrade()
		tr.Tags = []string{"revenge"}
		got := d.checkRevengeTrading(tr, nil)
		if got == nil {
			t.Fatal("tagged trade should fire")
		}
		if got.Confidence != 100 {
			t.Errorf("confidence = %d, want 100", got.Confidence)
		}
	})

	t.Run("uses entry time when previous trade never exited", func(t *testing.T) {
		open := prevLoss
		open.ExitTime = nil
		open.EntryTime = lossExit
		tr := newTrade(20*time.Minute, 1000)
		if d.checkRevengeTrading(tr, prepareHistory(tr, []models.Trade{open})) == nil {
			t.Error("should fall back to the previous trade's entry time")
		}
	})
}

func TestOvertrading(t *testing.T) {
	d := NewDetector(DefaultConfig())

	sameDay := func(n int) []models.Trade {
		trades := make([]models.Trade, n)
		for i := range trades {
			trades[i] = models.Trade{
				ID:        "t-" + string(rune('a'+i)),
				EntryTime: tuesdayMorning.Add(time.Duration(i) * 20 * time.Minute),
			}
		}
		return trades
	}

	tests := []struct {
		name     string
		history  []models.Trade
		wantFire bool
		wantSev  Severity
	}{
		{"5 total does not fire", sameDay(4), false, ""},
		{"6 total fires medium", sameDay(5), true, SeverityMedium},
		{"8 total fires high", sameDay(7), true, SeverityHigh},
		{"empty history never fires", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.EntryTime = tuesdayMorning.Add(6 * time.Hour)
			got := d.checkOvertrading(tr, tt.history)
			if (got != nil) != tt.wantFire {
				t.Fatalf("fired=%v, want %v", got != nil, tt.wantFire)
			}
			if got != nil && got.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSev)
			}
		})
	}

	t.Run("previous-day trades do not count", func(t *testing.T) {
		history := sameDay(7)
		for i := range history {
			history[i].EntryTime = history[i].EntryTime.AddDate(0, 0, -1)
		}
		tr := baseTrade()
		if d.checkOvertrading(tr, history) != nil {
			t.Error("yesterday's trades should not count toward today's cap")
		}
	})
}

func TestFOMOEntry(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		mutate   func(*models.Trade)
		wantFire bool
	}{
		{"well reasoned trade does not fire", func(tr *models.Trade) {}, false},
		{"fomo tag fires", func(tr *models.Trade) { tr.Tags = []string{"FOMO"} }, true},
		{"fomo emotion fires", func(tr *models.Trade) { tr.Emotions = []string{"fomo"} }, true},
		{"rushed emotion fires", func(tr *models.Trade) { tr.Emotions = []string{"rushed"} }, true},
		{"empty reason fires", func(tr *models.Trade) { tr.Reason = "" }, true},
		{"nine char reason fires", func(tr *models.Trade) { tr.Reason = "breakout!" }, true},
		{"ten char reason does not fire", func(tr *models.Trade) { tr.Reason = "a breakout" }, false},
		{"whitespace-only reason fires", func(tr *models.Trade) { tr.Reason = "             " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tt.mutate(&tr)
			got := d.checkFOMO(tr)
			if (got != nil) != tt.wantFire {
				t.Errorf("fired=%v, want %v", got != nil, tt.wantFire)
			}
		})
	}
}

func TestEmotionalTrading(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		emotions []string
		wantFire bool
	}{
		{"no emotions", nil, false},
		{"positive emotions", []string{"confident", "calm"}, false},
		{"fear fires", []string{"fear"}, true},
		{"mixed case panic fires", []string{"PANIC"}, true},
		{"frustrated among others fires", []string{"calm", "frustrated"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tr.Emotions = tt.emotions
			got := d.checkEmotionalTrading(tr)
			if (got != nil) != tt.wantFire {
				t.Errorf("fired=%v, want %v", got != nil, tt.wantFire)
			}
		})
	}
}

func TestNoTradePlan(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name     string
		mutate   func(*models.Trade)
		wantFire bool
		wantSev  Severity
	}{
		{"full plan does not fire", func(tr *models.Trade) {}, false, ""},
		{"short reason fires medium", func(tr *models.Trade) { tr.Reason = "looks good here" }, true, SeverityMedium},
		{"no stop fires medium", func(tr *models.Trade) { tr.StopLoss = nil }, true, SeverityMedium},
		{"no target fires medium", func(tr *models.Trade) { tr.TargetPrice = nil }, true, SeverityMedium},
		{"two missing fires high", func(tr *models.Trade) {
			tr.StopLoss = nil
			tr.TargetPrice = nil
		}, true, SeverityHigh},
		{"everything missing fires high", func(tr *models.Trade) {
			tr.Reason = ""
			tr.StopLoss = nil
			tr.TargetPrice = nil
		}, true, SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTrade()
			tt.mutate(&tr)
			got := d.checkNoTradePlan(tr)
			if (got != nil) != tt.wantFire {
				t.Fatalf("fired=%v, want %v", got != nil, tt.wantFire)
			}
			if got != nil && got.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSev)
			}
		})
	}
}

func TestCounterTrend(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tr := baseTrade()
	if d.checkCounterTrend(tr) != nil {
		t.Error("untagged trade should not fire")
	}

	tr.Tags = []string{"counter-trend"}
	got := d.checkCounterTrend(tr)
	if got == nil {
		t.Fatal("tagged trade should fire")
	}
	if got.Category != CategoryStrategy {
		t.Errorf("category = %s, want STRATEGY", got.Category)
	}
}
