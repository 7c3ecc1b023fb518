package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/promptbank"
	"github.com/aide-analytics/aide-cli/internal/report"
	"github.com/aide-analytics/aide-cli/internal/router"
	"github.com/aide-analytics/aide-cli/internal/rules"
	"github.com/aide-analytics/aide-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// memStore records saved asks in memory.
type memStore struct {
	mu   sync.Mutex
	asks []model.AskRecord
}

func (m *memStore) SaveAsk(_ context.Context, rec model.AskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asks = append(m.asks, rec)
	return nil
}

func (m *memStore) ListAsks(_ context.Context, _ store.Filter) ([]model.AskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AskRecord(nil), m.asks...), nil
}

func (m *memStore) Migrate(_ context.Context) error { return nil }
func (m *memStore) Close() error                    { return nil }

func pnlFixture() *dataset.Frame {
	return dataset.New(
		[]string{"Month", "Type", "Amount in USD", "FinalCustomerName"},
		[][]string{
			{"2024-01-01", "Revenue", "1000000", "Acme Corp"},
			{"2024-01-01", "Cost", "600000", "Acme Corp"},
		},
	)
}

// newTestServer wires a router with no semantic matcher, the way the
// CLI runs when no embeddings key is configured.
func newTestServer(history store.Store) *Server {
	r := router.New(router.DefaultConfig(), nil, rules.DefaultEngine(), report.DefaultRegistry())
	return New(r, promptbank.Default(), history, pnlFixture(), nil)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["pnl_rows"])
	assert.Equal(t, false, body["ut_loaded"])
}

func TestPrompts(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/prompts")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []model.PromptEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.NotEmpty(t, entries)
	assert.NotEmpty(t, entries[0].QID)
}

func TestAsk(t *testing.T) {
	history := &memStore{}
	srv := httptest.NewServer(newTestServer(history).Handler())
	defer srv.Close()

	payload := []byte(`{"question": "accounts with margin less than 30%"}`)
	resp, err := http.Post(srv.URL+"/ask", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, model.ModePrebuilt, res.Mode)
	assert.Equal(t, "Q1", res.QID)

	saved, err := history.ListAsks(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Q1", saved[0].QID)
}

func TestAskFallbackWithoutHistory(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil).Handler())
	defer srv.Close()

	payload := []byte(`{"question": "tell me something about revenue"}`)
	resp, err := http.Post(srv.URL+"/ask", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, model.ModeFallback, res.Mode)
	assert.NotEmpty(t, res.Tables)
}

func TestAskBadRequests(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/ask", "application/json", bytes.NewReader([]byte(`not json`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/ask", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
