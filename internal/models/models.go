// Package models provides domain models for the trading journal.
package models

// TradeType represents the direction of a trade.
type TradeType string

const (
	TradeLong  TradeType = "long"
	TradeShort TradeType = "short"
)

// TradeStatus represents the outcome state of a trade.
type TradeStatus string

const (
	StatusOpen      TradeStatus = "open"
	StatusWin       TradeStatus = "win"
	StatusLoss      TradeStatus = "loss"
	StatusBreakeven TradeStatus = "breakeven"
)
