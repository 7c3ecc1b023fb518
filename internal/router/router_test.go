package router

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/report"
	"github.com/aide-analytics/aide-cli/internal/rules"
)

// stubMatcher returns a fixed result, or an error when err is set.
type stubMatcher struct {
	res model.MatchResult
	err error
}

func (s stubMatcher) Match(_ context.Context, _ string) (model.MatchResult, error) {
	return s.res, s.err
}

func pnlFixture() *dataset.Frame {
	return dataset.New(
		[]string{"Month", "Type", "Amount in USD", "FinalCustomerName"},
		[][]string{
			{"2024-01-01", "Revenue", "1000000", "Acme Corp"},
			{"2024-01-01", "Cost", "600000", "Acme Corp"},
		},
	)
}

func okReport(qid string) report.Func {
	return func(_ context.Context, _ report.Request) (*model.Result, error) {
		return &model.Result{Mode: model.ModePrebuilt, QID: qid}, nil
	}
}

func testRegistry() *report.Registry {
	r := report.NewRegistry()
	r.Register("Q1", okReport("Q1"))
	r.Register("Q8", okReport("Q8"))
	return r
}

func TestRoute_HighScoreRunsPrebuilt(t *testing.T) {
	m := stubMatcher{res: model.MatchResult{QID: "Q1", Prompt: "margin below threshold", Score: 0.91}}
	r := New(DefaultConfig(), m, nil, testRegistry())

	res := r.Route(context.Background(), "which accounts have margin issues", pnlFixture(), nil)
	require.NotNil(t, res)
	assert.Equal(t, model.ModePrebuilt, res.Mode)
	assert.Equal(t, "Q1", res.QID)
	assert.Equal(t, "margin below threshold", res.Prompt)
	assert.InDelta(t, 0.91, res.Score, 1e-9)
}

func TestRoute_LowScoreFallsBack(t *testing.T) {
	m := stubMatcher{res: model.MatchResult{QID: "Q1", Prompt: "margin below threshold", Score: 0.41}}
	r := New(DefaultConfig(), m, nil, testRegistry())

	res := r.Route(context.Background(), "tell me about revenue", pnlFixture(), nil)
	assert.Equal(t, model.ModeFallback, res.Mode)
	assert.InDelta(t, 0.41, res.Score, 1e-9, "the weak match is still surfaced")
}

func TestRoute_OverrideWinsOverWeakMatch(t *testing.T) {
	m := stubMatcher{res: model.MatchResult{QID: "Q8", Prompt: "utilization trend", Score: 0.30}}
	r := New(DefaultConfig(), m, rules.DefaultEngine(), testRegistry())

	res := r.Route(context.Background(), "accounts with margin less than 30%", pnlFixture(), nil)
	assert.Equal(t, model.ModePrebuilt, res.Mode)
	assert.Equal(t, "Q1", res.QID)
	assert.Equal(t, rules.OverrideScore, res.Score)
}

func TestRoute_FreeformForcesFallback(t *testing.T) {
	m := stubMatcher{res: model.MatchResult{QID: "Q8", Prompt: "utilization trend", Score: 0.95}}
	r := New(DefaultConfig(), m, rules.DefaultEngine(), testRegistry())

	res := r.Route(context.Background(), "freeform: show me anything about Q4", pnlFixture(), nil)
	assert.Equal(t, model.ModeFallback, res.Mode)
}

func TestRoute_FreeformTriggerVariants(t *testing.T) {
	r := New(DefaultConfig(), nil, nil, testRegistry())
	for _, q := range []string{"ai: revenue", "AI: revenue", "ad-hoc: revenue", "  freeform: revenue"} {
		res := r.Route(context.Background(), q, pnlFixture(), nil)
		assert.Equal(t, model.ModeFallback, res.Mode, q)
	}
}

func TestRoute_OverrideBeatsFreeformByDefault(t *testing.T) {
	r := New(DefaultConfig(), nil, rules.DefaultEngine(), testRegistry())

	res := r.Route(context.Background(), "ai: margin less than 30%", pnlFixture(), nil)
	assert.Equal(t, model.ModePrebuilt, res.Mode)
	assert.Equal(t, "Q1", res.QID)
}

func TestRoute_FreeformBypassesOverridesWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FreeformBypassesOverrides = true
	r := New(cfg, nil, rules.DefaultEngine(), testRegistry())

	res := r.Route(context.Background(), "ai: margin less than 30%", pnlFixture(), nil)
	assert.Equal(t, model.ModeFallback, res.Mode)
}

func TestRoute_NilMatcherFallsBack(t *testing.T) {
	r := New(DefaultConfig(), nil, nil, testRegistry())

	res := r.Route(context.Background(), "anything", pnlFixture(), nil)
	require.NotNil(t, res)
	assert.Equal(t, model.ModeFallback, res.Mode)
}

func TestRoute_MatcherErrorDegradesWithNotice(t *testing.T) {
	m := stubMatcher{err: eris.New("embedding service down")}
	r := New(DefaultConfig(), m, nil, testRegistry())

	res := r.Route(context.Background(), "revenue trend", pnlFixture(), nil)
	assert.Equal(t, model.ModeFallback, res.Mode)
	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], "Semantic matching is unavailable")
}

func TestRoute_UnregisteredQIDDegradesWithNotice(t *testing.T) {
	m := stubMatcher{res: model.MatchResult{QID: "Q5", Prompt: "does not exist", Score: 0.99}}
	r := New(DefaultConfig(), m, nil, testRegistry())

	res := r.Route(context.Background(), "some question", pnlFixture(), nil)
	assert.Equal(t, model.ModeFallback, res.Mode)
	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], "No prebuilt analysis exists")
}

func TestRoute_MissingUTDegradesWithNotice(t *testing.T) {
	reg := report.NewRegistry()
	reg.Register("Q8", report.Func(func(_ context.Context, _ report.Request) (*model.Result, error) {
		return nil, report.ErrMissingUT
	}))
	m := stubMatcher{res: model.MatchResult{QID: "Q8", Prompt: "utilization trend", Score: 0.95}}
	r := New(DefaultConfig(), m, nil, reg)

	res := r.Route(context.Background(), "utilization trend", pnlFixture(), nil)
	assert.Equal(t, model.ModeFallback, res.Mode)
	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], "UT/HR dataset")
}

func TestRoute_ReportPanicDegradesWithNotice(t *testing.T) {
	reg := report.NewRegistry()
	reg.Register("Q1", report.Func(func(_ context.Context, _ report.Request) (*model.Result, error) {
		panic("boom")
	}))
	m := stubMatcher{res: model.MatchResult{QID: "Q1", Prompt: "margin below threshold", Score: 0.95}}
	r := New(DefaultConfig(), m, nil, reg)

	res := r.Route(context.Background(), "margin question", pnlFixture(), nil)
	require.NotNil(t, res)
	assert.Equal(t, model.ModeFallback, res.Mode)
	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], "unexpected problem")
}

func TestRoute_Deterministic(t *testing.T) {
	m := stubMatcher{res: model.MatchResult{QID: "Q1", Prompt: "margin below threshold", Score: 0.91}}
	r := New(DefaultConfig(), m, rules.DefaultEngine(), testRegistry())

	first := r.Route(context.Background(), "which accounts have margin issues", pnlFixture(), nil)
	for i := 0; i < 4; i++ {
		again := r.Route(context.Background(), "which accounts have margin issues", pnlFixture(), nil)
		assert.Equal(t, first.QID, again.QID)
		assert.Equal(t, first.Mode, again.Mode)
		assert.Equal(t, first.Score, again.Score)
	}
}

func TestFreeformPrefixStripped(t *testing.T) {
	r := New(DefaultConfig(), nil, nil, testRegistry())
	force, stripped := r.freeform("ai: show revenue")
	assert.True(t, force)
	assert.Equal(t, "show revenue", stripped)

	force, stripped = r.freeform("show revenue")
	assert.False(t, force)
	assert.Equal(t, "show revenue", stripped)
}
