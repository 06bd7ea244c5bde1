// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-journal/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	CloseTrade(ctx context.Context, id string, exitPrice float64, exitTime time.Time) error
	DeleteTrade(ctx context.Context, id string) error

	// Journal
	SaveJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	GetJournal(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error)

	// Analyses
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, tradeID string) (*models.AnalysisRecord, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	Status    models.TradeStatus
	StartDate time.Time
	EndDate   time.Time
	Tag       string
	Limit     int
}

// JournalFilter represents filters for querying journal entries.
type JournalFilter struct {
	TradeID   string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
