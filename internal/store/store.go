// Package store persists the question history: every routed question
// with its resolved mode, QID and score.
package store

import (
	"context"

	"github.com/aide-analytics/aide-cli/internal/model"
)

// Filter specifies criteria for listing history records.
type Filter struct {
	Mode   model.Mode `json:"mode,omitempty"`
	QID    string     `json:"qid,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// Store defines the persistence interface for the question history.
type Store interface {
	SaveAsk(ctx context.Context, rec model.AskRecord) error
	ListAsks(ctx context.Context, filter Filter) ([]model.AskRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
