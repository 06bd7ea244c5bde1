// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		trade_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		stop_loss REAL,
		target_price REAL,
		quantity INTEGER NOT NULL,
		position_size REAL NOT NULL,
		pnl REAL,
		status TEXT NOT NULL DEFAULT 'open',
		entry_time DATETIME NOT NULL,
		exit_time DATETIME,
		reason TEXT,
		emotions TEXT,
		tags TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);

	-- Journal entries table
	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		trade_id TEXT,
		date DATE NOT NULL,
		content TEXT NOT NULL,
		tags TEXT,
		mood TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_journal_date ON journal(date);

	-- Persisted analyses: detected mistakes plus optional AI insight
	CREATE TABLE IF NOT EXISTS analyses (
		trade_id TEXT PRIMARY KEY,
		mistakes TEXT NOT NULL,
		insight TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (trade_id) REFERENCES trades(id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTrade inserts or replaces a trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	emotions, _ := json.Marshal(trade.Emotions)
	tags, _ := json.Marshal(trade.Tags)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (id, symbol, trade_type, entry_price, exit_price, stop_loss, target_price, quantity, position_size, pnl, status, entry_time, exit_time, reason, emotions, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Symbol, trade.Type, trade.EntryPrice, nullFloat(trade.ExitPrice), nullFloat(trade.StopLoss), nullFloat(trade.TargetPrice),
		trade.Quantity, trade.PositionSize, nullFloat(trade.PnL), trade.Status, trade.EntryTime, nullTime(trade.ExitTime),
		trade.Reason, string(emotions), string(tags), trade.CreatedAt)
	if err != nil {
		return errors.NewStoreError("save", "trade", err)
	}
	return nil
}

// GetTrade retrieves a single trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, tradeSelect+" WHERE id = ?", id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrTradeNotFound
	}
	if err != nil {
		return nil, errors.NewStoreError("get", "trade", err)
	}
	return trade, nil
}

// GetTrades retrieves trades matching the filter, most recent entry first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := tradeSelect + " WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.StartDate.IsZero() {
		query += " AND entry_time >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND entry_time <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY entry_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("query", "trades", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, errors.NewStoreError("scan", "trade", err)
		}
		if filter.Tag != "" && !trade.HasTag(filter.Tag) {
			continue
		}
		trades = append(trades, *trade)
	}

	return trades, rows.Err()
}

// CloseTrade records the exit of an open trade, computing PnL and status.
func (s *SQLiteStore) CloseTrade(ctx context.Context, id string, exitPrice float64, exitTime time.Time) error {
	trade, err := s.GetTrade(ctx, id)
	if err != nil {
		return err
	}
	if trade.IsClosed() {
		return errors.ErrTradeClosed
	}

	trade.Close(exitPrice, exitTime)

	_, err = s.db.ExecContext(ctx, `
		UPDATE trades SET exit_price = ?, exit_time = ?, pnl = ?, status = ? WHERE id = ?
	`, *trade.ExitPrice, *trade.ExitTime, *trade.PnL, trade.Status, id)
	if err != nil {
		return errors.NewStoreError("close", "trade", err)
	}
	return nil
}

// DeleteTrade removes a trade and its persisted analysis.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return errors.NewStoreError("delete", "trade", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrTradeNotFound
	}
	_, _ = s.db.ExecContext(ctx, "DELETE FROM analyses WHERE trade_id = ?", id)
	return nil
}

// SaveJournalEntry saves a journal entry to the database.
func (s *SQLiteStore) SaveJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	tags, _ := json.Marshal(entry.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO journal (id, trade_id, date, content, tags, mood, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.TradeID, entry.Date, entry.Content, string(tags), entry.Mood, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return errors.NewStoreError("save", "journal entry", err)
	}
	return nil
}

// GetJournal retrieves journal entries from the database.
func (s *SQLiteStore) GetJournal(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error) {
	query := "SELECT id, trade_id, date, content, tags, mood, created_at, updated_at FROM journal WHERE 1=1"
	args := []interface{}{}

	if filter.TradeID != "" {
		query += " AND trade_id = ?"
		args = append(args, filter.TradeID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("query", "journal", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		var tagsJSON string
		if err := rows.Scan(&e.ID, &e.TradeID, &e.Date, &e.Content, &tagsJSON, &e.Mood, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, errors.NewStoreError("scan", "journal entry", err)
		}
		json.Unmarshal([]byte(tagsJSON), &e.Tags)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SaveAnalysis persists a trade analysis, replacing any previous one.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analyses (trade_id, mistakes, insight, created_at)
		VALUES (?, ?, ?, ?)
	`, record.TradeID, string(record.Mistakes), record.Insight, record.CreatedAt)
	if err != nil {
		return errors.NewStoreError("save", "analysis", err)
	}
	return nil
}

// GetAnalysis retrieves the persisted analysis for a trade.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, tradeID string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	var mistakesJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT trade_id, mistakes, insight, created_at FROM analyses WHERE trade_id = ?
	`, tradeID).Scan(&record.TradeID, &mistakesJSON, &record.Insight, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrDataNotFound
	}
	if err != nil {
		return nil, errors.NewStoreError("get", "analysis", err)
	}
	record.Mistakes = json.RawMessage(mistakesJSON)
	return &record, nil
}

const tradeSelect = "SELECT id, symbol, trade_type, entry_price, exit_price, stop_loss, target_price, quantity, position_size, pnl, status, entry_time, exit_time, reason, emotions, tags, created_at FROM trades"

// rowScanner abstracts sql.Row and sql.Rows for scanTrade.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	var exitPrice, stopLoss, targetPrice, pnl sql.NullFloat64
	var exitTime sql.NullTime
	var emotionsJSON, tagsJSON string

	if err := row.Scan(&t.ID, &t.Symbol, &t.Type, &t.EntryPrice, &exitPrice, &stopLoss, &targetPrice,
		&t.Quantity, &t.PositionSize, &pnl, &t.Status, &t.EntryTime, &exitTime,
		&t.Reason, &emotionsJSON, &tagsJSON, &t.CreatedAt); err != nil {
		return nil, err
	}

	if exitPrice.Valid {
		t.ExitPrice = &exitPrice.Float64
	}
	if stopLoss.Valid {
		t.StopLoss = &stopLoss.Float64
	}
	if targetPrice.Valid {
		t.TargetPrice = &targetPrice.Float64
	}
	if pnl.Valid {
		t.PnL = &pnl.Float64
	}
	if exitTime.Valid {
		t.ExitTime = &exitTime.Time
	}
	json.Unmarshal([]byte(emotionsJSON), &t.Emotions)
	json.Unmarshal([]byte(tagsJSON), &t.Tags)

	return &t, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
