package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-analytics/aide-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteSaveAndList(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveAsk(ctx, model.AskRecord{
		ID: "a1", Question: "margin below 30", Mode: model.ModePrebuilt,
		QID: "Q1", Score: 1.0, CreatedAt: base,
	}))
	require.NoError(t, s.SaveAsk(ctx, model.AskRecord{
		ID: "a2", Question: "tell me about revenue", Mode: model.ModeFallback,
		Score: 0.41, CreatedAt: base.Add(time.Hour),
	}))

	out, err := s.ListAsks(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a2", out[0].ID, "newest first")
	assert.Equal(t, "a1", out[1].ID)
	assert.Equal(t, "Q1", out[1].QID)
	assert.InDelta(t, 1.0, out[1].Score, 1e-9)
}

func TestSQLiteListFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []model.AskRecord{
		{ID: "a1", Question: "q1", Mode: model.ModePrebuilt, QID: "Q1"},
		{ID: "a2", Question: "q2", Mode: model.ModeFallback},
		{ID: "a3", Question: "q3", Mode: model.ModePrebuilt, QID: "Q8"},
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveAsk(ctx, rec))
	}

	out, err := s.ListAsks(ctx, Filter{Mode: model.ModePrebuilt})
	require.NoError(t, err)
	require.Len(t, out, 2)

	out, err = s.ListAsks(ctx, Filter{QID: "Q8"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a3", out[0].ID)

	out, err = s.ListAsks(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a2", out[0].ID)
}

func TestSQLiteAssignsIDAndTimestamp(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAsk(ctx, model.AskRecord{Question: "q", Mode: model.ModeFallback}))

	out, err := s.ListAsks(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ID)
	assert.False(t, out[0].CreatedAt.IsZero())
}

func TestSQLiteMigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
