package models

import "time"

// JournalEntry represents a trading journal note, optionally linked to a trade.
type JournalEntry struct {
	ID        string    `json:"id"`
	TradeID   string    `json:"trade_id,omitempty"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
