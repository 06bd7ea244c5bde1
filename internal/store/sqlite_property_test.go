package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: for any valid trade, saving and retrieving it preserves every
// field, including the presence/absence of the optional ones.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prop.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "TSLA", "MSFT", "NVDA", "SPY", "QQQ"}
	var seq int

	properties.Property("Trade round-trip preserves fields and absence", prop.ForAll(
		func(symbolIdx int, entryPrice float64, qty int, hasStop, hasTarget, isShort bool, stopPct float64, minuteOffset int64) bool {
			ctx := context.Background()
			seq++

			trade := &models.Trade{
				ID:           fmt.Sprintf("prop-%d", seq),
				Symbol:       symbols[symbolIdx%len(symbols)],
				Type:         models.TradeLong,
				EntryPrice:   entryPrice,
				Quantity:     qty,
				PositionSize: entryPrice * float64(qty),
				Status:       models.StatusOpen,
				EntryTime:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minuteOffset) * time.Minute),
				Reason:       "property trade",
				CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			if isShort {
				trade.Type = models.TradeShort
			}
			if hasStop {
				stop := entryPrice * (1 - stopPct/100)
				trade.StopLoss = &stop
			}
			if hasTarget {
				target := entryPrice * (1 + stopPct/50)
				trade.TargetPrice = &target
			}

			if err := store.SaveTrade(ctx, trade); err != nil {
				t.Logf("SaveTrade failed: %v", err)
				return false
			}
			got, err := store.GetTrade(ctx, trade.ID)
			if err != nil {
				t.Logf("GetTrade failed: %v", err)
				return false
			}

			if got.Symbol != trade.Symbol || got.Type != trade.Type || got.Quantity != trade.Quantity {
				return false
			}
			if math.Abs(got.EntryPrice-trade.EntryPrice) > 1e-9 {
				return false
			}
			if (got.StopLoss == nil) != (trade.StopLoss == nil) {
				return false
			}
			if got.StopLoss != nil && math.Abs(*got.StopLoss-*trade.StopLoss) > 1e-9 {
				return false
			}
			if (got.TargetPrice == nil) != (trade.TargetPrice == nil) {
				return false
			}
			if got.ExitPrice != nil || got.PnL != nil {
				return false
			}
			return got.EntryTime.Equal(trade.EntryTime)
		},
		gen.IntRange(0, 5),
		gen.Float64Range(1, 5000),
		gen.IntRange(1, 100000),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Float64Range(0.5, 20),
		gen.Int64Range(0, 365*24*60),
	))

	properties.TestingRun(t)
}
