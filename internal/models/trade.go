package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Trade represents a single journaled trade. Pricing fields that may be
// unset (open positions, trades entered without protection) are pointers;
// nil means "not set".
type Trade struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol"`
	Type         TradeType   `json:"trade_type"`
	EntryPrice   float64     `json:"entry_price"`
	ExitPrice    *float64    `json:"exit_price,omitempty"`
	StopLoss     *float64    `json:"stop_loss,omitempty"`
	TargetPrice  *float64    `json:"target_price,omitempty"`
	Quantity     int         `json:"quantity"`
	PositionSize float64     `json:"position_size"`
	PnL          *float64    `json:"pnl,omitempty"`
	Status       TradeStatus `json:"status"`
	EntryTime    time.Time   `json:"entry_time"`
	ExitTime     *time.Time  `json:"exit_time,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	Emotions     []string    `json:"emotions,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsClosed reports whether the position has been exited.
func (t *Trade) IsClosed() bool {
	return t.ExitPrice != nil
}

// HasTag reports whether the trade carries the given tag (case-insensitive).
func (t *Trade) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if strings.EqualFold(strings.TrimSpace(v), tag) {
			return true
		}
	}
	return false
}

// HasEmotion reports whether the trade carries the given emotion tag
// (case-insensitive).
func (t *Trade) HasEmotion(emotion string) bool {
	for _, v := range t.Emotions {
		if strings.EqualFold(strings.TrimSpace(v), emotion) {
			return true
		}
	}
	return false
}

// HoldDuration returns the time between entry and exit, or zero when the
// trade is still open.
func (t *Trade) HoldDuration() time.Duration {
	if t.ExitTime == nil {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime)
}

// Close marks the trade exited at the given price and time, computing PnL
// and the resulting status from the trade direction.
func (t *Trade) Close(exitPrice float64, exitTime time.Time) {
	pnl := (exitPrice - t.EntryPrice) * float64(t.Quantity)
	if t.Type == TradeShort {
		pnl = -pnl
	}
	t.ExitPrice = &exitPrice
	t.ExitTime = &exitTime
	t.PnL = &pnl

	switch {
	case pnl > 0:
		t.Status = StatusWin
	case pnl < 0:
		t.Status = StatusLoss
	default:
		t.Status = StatusBreakeven
	}
}

// AnalysisRecord is a persisted trade analysis: the detected mistakes
// (serialized JSON) plus an optional AI-generated insight.
type AnalysisRecord struct {
	TradeID   string          `json:"trade_id"`
	Mistakes  json.RawMessage `json:"mistakes"`
	Insight   string          `json:"insight,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
