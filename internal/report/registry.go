// Package report contains the prebuilt analytical reports (Q1-Q10) and
// the registry the router dispatches into.
package report

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
)

// Request carries everything a report may use. Reports that ignore a
// field simply don't read it; there is one uniform signature.
type Request struct {
	PNL      *dataset.Frame
	UT       *dataset.Frame // nil when the UT dataset is unavailable
	Question string
}

// Report produces a result for a resolved QID.
type Report interface {
	Run(ctx context.Context, req Request) (*model.Result, error)
}

// Func adapts a function to the Report interface.
type Func func(ctx context.Context, req Request) (*model.Result, error)

// Run implements Report.
func (f Func) Run(ctx context.Context, req Request) (*model.Result, error) {
	return f(ctx, req)
}

// ErrNotRegistered is returned by Lookup misses; the router treats it
// as a normal condition and degrades to the fallback summarizer.
var ErrNotRegistered = eris.New("report: qid not registered")

// ErrMissingUT is returned by reports that need the utilization
// dataset when none was loaded. The router degrades to the fallback
// summarizer over the P&L data.
var ErrMissingUT = eris.New("report: utilization dataset required")

// Registry maps QIDs to report implementations, populated at startup.
type Registry struct {
	reports map[string]Report
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{reports: make(map[string]Report)}
}

// Register binds a QID to a report, replacing any previous binding.
func (r *Registry) Register(qid string, rep Report) {
	r.reports[qid] = rep
}

// Lookup returns the report for a QID, or ErrNotRegistered.
func (r *Registry) Lookup(qid string) (Report, error) {
	rep, ok := r.reports[qid]
	if !ok {
		return nil, eris.Wrapf(ErrNotRegistered, "qid %s", qid)
	}
	return rep, nil
}

// QIDs returns the registered QIDs in sorted order.
func (r *Registry) QIDs() []string {
	out := make([]string, 0, len(r.reports))
	for qid := range r.reports {
		out = append(out, qid)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns the production report set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("Q1", Func(MarginBelowThreshold))
	r.Register("Q2", Func(CostDrivenMarginDrop))
	r.Register("Q3", Func(CBQuarterVariance))
	r.Register("Q4", Func(CBRevenueTrend))
	r.Register("Q6", Func(RealizedRate))
	r.Register("Q7", Func(MonthlyHeadcount))
	r.Register("Q8", Func(UtilizationTrend))
	r.Register("Q9", Func(RevenuePerPerson))
	r.Register("Q10", Func(FresherUtilization))
	return r
}
