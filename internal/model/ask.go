package model

import "time"

// AskRecord is one routed question as persisted in the history store.
type AskRecord struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Mode      Mode      `json:"mode"`
	QID       string    `json:"qid,omitempty"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
