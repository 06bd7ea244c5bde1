// Package importer parses broker CSV exports into journal trades.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// timeLayouts are the entry/exit time formats accepted in CSV files, tried
// in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// csvTrade is one row of a broker export. Optional columns are strings so
// an empty cell maps to "not set" rather than zero.
type csvTrade struct {
	ID          string  `csv:"id"`
	Symbol      string  `csv:"symbol"`
	Type        string  `csv:"type"`
	EntryPrice  float64 `csv:"entry_price"`
	ExitPrice   string  `csv:"exit_price"`
	StopLoss    string  `csv:"stop_loss"`
	TargetPrice string  `csv:"target_price"`
	Quantity    int     `csv:"quantity"`
	PnL         string  `csv:"pnl"`
	EntryTime   string  `csv:"entry_time"`
	ExitTime    string  `csv:"exit_time"`
	Reason      string  `csv:"reason"`
	Emotions    string  `csv:"emotions"`
	Tags        string  `csv:"tags"`
}

// Result summarizes an import run. Rows that fail validation are skipped
// with their errors collected; the rest import.
type Result struct {
	Trades   []models.Trade
	Imported int
	Skipped  int
	Errors   []error
}

// CSVImporter reads broker CSV exports.
type CSVImporter struct {
	logger zerolog.Logger
}

// NewCSVImporter creates a CSV importer.
func NewCSVImporter(logger zerolog.Logger) *CSVImporter {
	return &CSVImporter{logger: logger}
}

// ImportFile reads and converts a CSV file of trades.
func (i *CSVImporter) ImportFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewImportError(path, 0, "opening file", err)
	}
	defer f.Close()

	return i.Import(f, filepath.Base(path))
}

// Import reads and converts CSV trade rows from r. name is used in error
// reporting only.
func (i *CSVImporter) Import(r io.Reader, name string) (*Result, error) {
	var rows []*csvTrade
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.NewImportError(name, 0, "parsing CSV", err)
	}

	start := time.Now()
	result := &Result{}
	for idx, row := range rows {
		trade, err := rowToTrade(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, errors.NewImportError(name, idx+2, "invalid row", err))
			continue
		}
		result.Trades = append(result.Trades, *trade)
		result.Imported++
	}

	i.logger.Info().
		Str("file", name).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Dur("duration", time.Since(start)).
		Msg("CSV import parsed")

	return result, nil
}

func rowToTrade(row *csvTrade) (*models.Trade, error) {
	if strings.TrimSpace(row.Symbol) == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if row.EntryPrice <= 0 {
		return nil, fmt.Errorf("entry_price must be positive, got %v", row.EntryPrice)
	}
	if row.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", row.Quantity)
	}

	tradeType, err := parseTradeType(row.Type)
	if err != nil {
		return nil, err
	}
	entryTime, err := parseTime(row.EntryTime)
	if err != nil {
		return nil, fmt.Errorf("entry_time: %w", err)
	}

	trade := &models.Trade{
		ID:           strings.TrimSpace(row.ID),
		Symbol:       strings.ToUpper(strings.TrimSpace(row.Symbol)),
		Type:         tradeType,
		EntryPrice:   row.EntryPrice,
		Quantity:     row.Quantity,
		PositionSize: row.EntryPrice * float64(row.Quantity),
		Status:       models.StatusOpen,
		EntryTime:    entryTime,
		Reason:       strings.TrimSpace(row.Reason),
		Emotions:     splitList(row.Emotions),
		Tags:         splitList(row.Tags),
		CreatedAt:    time.Now().UTC(),
	}
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}

	if trade.ExitPrice, err = parseOptionalFloat(row.ExitPrice, "exit_price"); err != nil {
		return nil, err
	}
	if trade.StopLoss, err = parseOptionalFloat(row.StopLoss, "stop_loss"); err != nil {
		return nil, err
	}
	if trade.TargetPrice, err = parseOptionalFloat(row.TargetPrice, "target_price"); err != nil {
		return nil, err
	}
	if trade.PnL, err = parseOptionalFloat(row.PnL, "pnl"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(row.ExitTime) != "" {
		exitTime, err := parseTime(row.ExitTime)
		if err != nil {
			return nil, fmt.Errorf("exit_time: %w", err)
		}
		trade.ExitTime = &exitTime
	}

	if trade.ExitPrice != nil {
		trade.Status = statusFromPnL(trade.PnL)
	}

	return trade, nil
}

func parseTradeType(s string) (models.TradeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "":
		return models.TradeLong, nil
	case "short", "sell":
		return models.TradeShort, nil
	default:
		return "", fmt.Errorf("unknown trade type %q", s)
	}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseOptionalFloat(s, field string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q", field, s)
	}
	return &v, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func statusFromPnL(pnl *float64) models.TradeStatus {
	if pnl == nil {
		return models.StatusBreakeven
	}
	switch {
	case *pnl > 0:
		return models.StatusWin
	case *pnl < 0:
		return models.StatusLoss
	default:
		return models.StatusBreakeven
	}
}
