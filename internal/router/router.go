// Package router decides, for one question, whether a prebuilt report
// answers it or the generic fallback summarizer should. One pass per
// question, no retries; every pass produces a result.
package router

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/fallback"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/report"
	"github.com/aide-analytics/aide-cli/internal/rules"
)

// DefaultThreshold is the similarity cutoff below which a matcher hit
// is not trusted. The matcher index is built with the same value so the
// two decisions cannot drift apart.
const DefaultThreshold = 0.72

// defaultFreeformTriggers are the prefixes that force the fallback
// path regardless of match confidence.
var defaultFreeformTriggers = []string{"ai:", "freeform:", "ad-hoc:"}

// Matcher resolves a question against the prompt bank.
type Matcher interface {
	Match(ctx context.Context, question string) (model.MatchResult, error)
}

// Config tunes one router instance.
type Config struct {
	// Threshold below which a matcher score routes to fallback.
	Threshold float64
	// FreeformTriggers are matched case-insensitively against the
	// trimmed start of the question.
	FreeformTriggers []string
	// FreeformBypassesOverrides decides precedence when a freeform
	// prefix and a rule override both apply. The default (false) lets
	// the override win, preserving the long-standing behavior.
	FreeformBypassesOverrides bool
}

// DefaultConfig returns the production routing configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:        DefaultThreshold,
		FreeformTriggers: defaultFreeformTriggers,
	}
}

// Router wires the matcher, the override engine, the report registry
// and the fallback summarizer into one decision pipeline.
type Router struct {
	cfg       Config
	matcher   Matcher
	overrides *rules.Engine
	registry  *report.Registry
	log       *zap.Logger
}

// New builds a router. matcher may be nil, in which case every
// question routes through overrides or falls back.
func New(cfg Config, m Matcher, overrides *rules.Engine, registry *report.Registry) *Router {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if len(cfg.FreeformTriggers) == 0 {
		cfg.FreeformTriggers = defaultFreeformTriggers
	}
	return &Router{
		cfg:       cfg,
		matcher:   m,
		overrides: overrides,
		registry:  registry,
		log:       zap.L().Named("router"),
	}
}

// Route runs one full routing pass. It never returns an error: any
// failure along the way degrades to the fallback summarizer with a
// notice, because "no good prebuilt answer" is a normal condition.
func (r *Router) Route(ctx context.Context, question string, pnl, ut *dataset.Frame) *model.Result {
	question = strings.TrimSpace(question)
	forceAI, stripped := r.freeform(question)

	var (
		match   model.MatchResult
		notices []string
	)
	if r.matcher != nil {
		m, err := r.matcher.Match(ctx, stripped)
		if err != nil {
			r.log.Warn("semantic match failed", zap.Error(err))
			notices = append(notices, "Semantic matching is unavailable; answered from the raw data instead.")
		} else {
			match = m
		}
	}

	overrideFired := false
	if r.overrides != nil && (!forceAI || !r.cfg.FreeformBypassesOverrides) {
		if o, ok := r.overrides.Evaluate(stripped); ok {
			match = o
			overrideFired = true
		}
	}

	lowScore := match.Score < r.cfg.Threshold && !overrideFired
	r.log.Debug("routing decision",
		zap.String("qid", match.QID),
		zap.Float64("score", match.Score),
		zap.Bool("override", overrideFired),
		zap.Bool("force_ai", forceAI),
		zap.Bool("low_score", lowScore),
	)

	useFallback := !match.Matched() || lowScore
	if forceAI && !overrideFired {
		useFallback = true
	}

	var res *model.Result
	if !useFallback {
		res = r.runPrebuilt(ctx, match, stripped, pnl, ut, &notices)
	}
	if res == nil {
		res = fallback.Summarize(ctx, stripped, pnl, ut)
		res.Prompt, res.Score = match.Prompt, match.Score
	}
	res.Notices = append(notices, res.Notices...)
	return res
}

// runPrebuilt dispatches to the registry. A missing report, a report
// error, or a panic inside a report all return nil so the caller
// degrades to fallback.
func (r *Router) runPrebuilt(ctx context.Context, match model.MatchResult, question string, pnl, ut *dataset.Frame, notices *[]string) (res *model.Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("prebuilt report panicked",
				zap.String("qid", match.QID), zap.Any("panic", p))
			*notices = append(*notices, "The prebuilt analysis hit an unexpected problem; answered from the raw data instead.")
			res = nil
		}
	}()

	rep, err := r.registry.Lookup(match.QID)
	if err != nil {
		if eris.Is(err, report.ErrNotRegistered) {
			r.log.Info("no report registered", zap.String("qid", match.QID))
			*notices = append(*notices, "No prebuilt analysis exists for this question yet; answered from the raw data instead.")
		} else {
			r.log.Warn("report lookup failed", zap.String("qid", match.QID), zap.Error(err))
		}
		return nil
	}

	out, err := rep.Run(ctx, report.Request{PNL: pnl, UT: ut, Question: question})
	if err != nil {
		if eris.Is(err, report.ErrMissingUT) {
			*notices = append(*notices, "This analysis needs the UT/HR dataset, which is not loaded; answered from the P&L data instead.")
		} else {
			r.log.Warn("prebuilt report failed", zap.String("qid", match.QID), zap.Error(err))
			*notices = append(*notices, "The prebuilt analysis failed; answered from the raw data instead.")
		}
		return nil
	}

	out.Prompt, out.Score = match.Prompt, match.Score
	return out
}

// freeform reports whether the question carries an explicit free-form
// trigger prefix, returning the question with the prefix stripped.
func (r *Router) freeform(question string) (bool, string) {
	ql := strings.ToLower(question)
	for _, trigger := range r.cfg.FreeformTriggers {
		if strings.HasPrefix(ql, trigger) {
			return true, strings.TrimSpace(question[len(trigger):])
		}
	}
	return false, question
}
