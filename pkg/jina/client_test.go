package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(0),
	)
}

func TestEmbed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jina-embeddings-v3", req.Model)
		assert.Equal(t, []string{"alpha", "beta"}, req.Input)

		// Items deliberately out of order; Index decides placement.
		_ = json.NewEncoder(w).Encode(embedResponse{Data: []embedItem{
			{Index: 1, Embedding: []float32{0, 1}},
			{Index: 0, Embedding: []float32{1, 0}},
		}})
	})

	vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])
}

func TestEmbedEmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})
	vectors, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Data: []embedItem{
			{Index: 0, Embedding: []float32{1}},
		}})
	})

	vectors, err := client.Embed(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vectors[0])
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedCountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Data: []embedItem{
			{Index: 0, Embedding: []float32{1}},
		}})
	})

	_, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 inputs")
}

func TestEmbedIndexOutOfRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Data: []embedItem{
			{Index: 5, Embedding: []float32{1}},
		}})
	})

	_, err := client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
