package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testTrade(id string, entry time.Time) *models.Trade {
	stop := 98.0
	target := 106.0
	return &models.Trade{
		ID:           id,
		Symbol:       "AAPL",
		Type:         models.TradeLong,
		EntryPrice:   100,
		StopLoss:     &stop,
		TargetPrice:  &target,
		Quantity:     10,
		PositionSize: 1000,
		Status:       models.StatusOpen,
		EntryTime:    entry,
		Reason:       "Breakout above resistance with volume confirmation",
		Emotions:     []string{"calm"},
		Tags:         []string{"breakout"},
		CreatedAt:    entry,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	trade := testTrade("t1", entry)
	if err := store.SaveTrade(ctx, trade); err != nil {
		t.Fatalf("SaveTrade: %v", err)
	}

	got, err := store.GetTrade(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if got.Symbol != trade.Symbol || got.Type != trade.Type || got.Quantity != trade.Quantity {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.StopLoss == nil || *got.StopLoss != 98 {
		t.Errorf("stop loss not preserved: %v", got.StopLoss)
	}
	if got.ExitPrice != nil || got.PnL != nil || got.ExitTime != nil {
		t.Errorf("absent fields should stay nil: %+v", got)
	}
	if !got.EntryTime.Equal(entry) {
		t.Errorf("entry time = %v, want %v", got.EntryTime, entry)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "breakout" {
		t.Errorf("tags not preserved: %v", got.Tags)
	}
}

func TestGetTradeNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTrade(context.Background(), "missing")
	if !errors.Is(err, errors.ErrTradeNotFound) {
		t.Errorf("err = %v, want ErrTradeNotFound", err)
	}
}

func TestCloseTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	if err := store.SaveTrade(ctx, testTrade("t1", entry)); err != nil {
		t.Fatalf("SaveTrade: %v", err)
	}

	exitTime := entry.Add(2 * time.Hour)
	if err := store.CloseTrade(ctx, "t1", 104, exitTime); err != nil {
		t.Fatalf("CloseTrade: %v", err)
	}

	got, err := store.GetTrade(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if got.PnL == nil || *got.PnL != 40 {
		t.Errorf("pnl = %v, want 40", got.PnL)
	}
	if got.Status != models.StatusWin {
		t.Errorf("status = %s, want win", got.Status)
	}

	// Closing again fails.
	if err := store.CloseTrade(ctx, "t1", 105, exitTime); !errors.Is(err, errors.ErrTradeClosed) {
		t.Errorf("second close err = %v, want ErrTradeClosed", err)
	}
}

func TestCloseShortTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	trade := testTrade("t1", entry)
	trade.Type = models.TradeShort
	if err := store.SaveTrade(ctx, trade); err != nil {
		t.Fatalf("SaveTrade: %v", err)
	}

	if err := store.CloseTrade(ctx, "t1", 96, entry.Add(time.Hour)); err != nil {
		t.Fatalf("CloseTrade: %v", err)
	}

	got, _ := store.GetTrade(ctx, "t1")
	if got.PnL == nil || *got.PnL != 40 {
		t.Errorf("short pnl = %v, want 40", got.PnL)
	}
}

func TestGetTradesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	for i, sym := range []string{"AAPL", "TSLA", "AAPL"} {
		trade := testTrade("t"+string(rune('1'+i)), base.AddDate(0, 0, i))
		trade.Symbol = sym
		if err := store.SaveTrade(ctx, trade); err != nil {
			t.Fatalf("SaveTrade: %v", err)
		}
	}

	aapl, err := store.GetTrades(ctx, TradeFilter{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(aapl) != 2 {
		t.Errorf("AAPL trades = %d, want 2", len(aapl))
	}

	// Most recent first.
	all, err := store.GetTrades(ctx, TradeFilter{})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all trades = %d, want 3", len(all))
	}
	if !all[0].EntryTime.After(all[1].EntryTime) {
		t.Error("trades not ordered by entry time descending")
	}

	limited, err := store.GetTrades(ctx, TradeFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited trades = %d, want 1", len(limited))
	}
}

func TestDeleteTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveTrade(ctx, testTrade("t1", time.Now().UTC())); err != nil {
		t.Fatalf("SaveTrade: %v", err)
	}
	if err := store.DeleteTrade(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTrade: %v", err)
	}
	if err := store.DeleteTrade(ctx, "t1"); !errors.Is(err, errors.ErrTradeNotFound) {
		t.Errorf("second delete err = %v, want ErrTradeNotFound", err)
	}
}

func TestJournalRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	entry := &models.JournalEntry{
		ID:        "j1",
		TradeID:   "t1",
		Date:      now,
		Content:   "Forced the entry, paid for it",
		Tags:      []string{"discipline"},
		Mood:      "frustrated",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.SaveJournalEntry(ctx, entry); err != nil {
		t.Fatalf("SaveJournalEntry: %v", err)
	}

	got, err := store.GetJournal(ctx, JournalFilter{TradeID: "t1"})
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if len(got) != 1 || got[0].Content != entry.Content || got[0].Mood != entry.Mood {
		t.Errorf("journal round trip mismatch: %+v", got)
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mistakes := json.RawMessage(`[{"id":"NO_STOPLOSS","category":"RISK_MANAGEMENT","severity":"high","message":"m","suggestion":"s"}]`)
	record := &models.AnalysisRecord{
		TradeID:   "t1",
		Mistakes:  mistakes,
		Insight:   "Stop trading without stops.",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveAnalysis(ctx, record); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, err := store.GetAnalysis(ctx, "t1")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if string(got.Mistakes) != string(mistakes) {
		t.Errorf("mistakes JSON = %s, want %s", got.Mistakes, mistakes)
	}
	if got.Insight != record.Insight {
		t.Errorf("insight = %q, want %q", got.Insight, record.Insight)
	}

	if _, err := store.GetAnalysis(ctx, "t2"); !errors.Is(err, errors.ErrDataNotFound) {
		t.Errorf("missing analysis err = %v, want ErrDataNotFound", err)
	}
}
