// Package matcher maps a free-text question to the closest canonical
// intent via cosine similarity over precomputed prompt-bank embeddings.
package matcher

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/promptbank"
)

// Embedder encodes texts into fixed-length vectors. The embedding model
// itself is a black box to this package.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the immutable semantic index over the prompt bank:
// one vector per example phrasing, computed once at startup.
type Index struct {
	embedder  Embedder
	entries   []model.PromptEntry
	vectors   [][]float32
	threshold float64
}

// NewIndex embeds every prompt-bank phrasing and returns the index.
// An embedding failure here is fatal by design: continuing with a
// broken embedder would misroute every question.
func NewIndex(ctx context.Context, embedder Embedder, bank *promptbank.Bank, threshold float64) (*Index, error) {
	entries := bank.Entries()
	if len(entries) == 0 {
		return nil, eris.New("matcher: prompt bank is empty")
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, eris.Wrap(err, "matcher: embed prompt bank")
	}
	if len(vectors) != len(entries) {
		return nil, eris.Errorf("matcher: got %d vectors for %d prompts", len(vectors), len(entries))
	}

	zap.L().Info("matcher: prompt bank indexed",
		zap.Int("prompts", len(entries)),
		zap.Float64("threshold", threshold),
	)

	return &Index{
		embedder:  embedder,
		entries:   entries,
		vectors:   vectors,
		threshold: threshold,
	}, nil
}

// Threshold returns the similarity cutoff below which no QID is
// resolved. The router shares this constant for its fallback decision.
func (ix *Index) Threshold() float64 {
	return ix.threshold
}

// Match embeds the question and returns the best-matching prompt-bank
// entry. When the best similarity is below the threshold the QID is
// cleared but the matched phrasing and score are still reported.
func (ix *Index) Match(ctx context.Context, question string) (model.MatchResult, error) {
	if question == "" {
		return model.MatchResult{}, eris.New("matcher: empty question")
	}

	qv, err := ix.embedder.Embed(ctx, []string{question})
	if err != nil {
		return model.MatchResult{}, eris.Wrap(err, "matcher: embed question")
	}
	if len(qv) != 1 {
		return model.MatchResult{}, eris.Errorf("matcher: got %d vectors for one question", len(qv))
	}

	bestIdx, bestScore := -1, math.Inf(-1)
	for i, v := range ix.vectors {
		if s := cosine(qv[0], v); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 {
		return model.MatchResult{}, eris.New("matcher: no prompt vectors")
	}

	res := model.MatchResult{
		Prompt: ix.entries[bestIdx].Text,
		Score:  bestScore,
	}
	if bestScore >= ix.threshold {
		res.QID = ix.entries[bestIdx].QID
	}
	return res, nil
}

// cosine computes cosine similarity of two vectors; zero-norm inputs
// score 0.
func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
