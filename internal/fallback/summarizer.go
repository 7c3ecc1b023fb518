// Package fallback computes a best-effort answer straight from the raw
// data when no prebuilt report applies. It always produces a result;
// missing columns degrade to notices, never errors.
package fallback

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

var (
	headcountKeywords = []string{"headcount", "fte", "resources"}
	hcTokenRe         = regexp.MustCompile(`\bhc\b`)

	locationColumns = []string{"Location", "WorkLocation", "Onsite_Offshore", "Onshore_Offshore"}
)

// Summarize answers a question directly from the datasets. ut may be
// nil; headcount and utilization questions then degrade to a notice.
func Summarize(_ context.Context, question string, pnl, ut *dataset.Frame) *model.Result {
	ql := strings.ToLower(question)

	if isHeadcountQuestion(ql) {
		return headcountView(question, ut)
	}
	return financialView(question, ql, pnl)
}

func isHeadcountQuestion(ql string) bool {
	for _, k := range headcountKeywords {
		if strings.Contains(ql, k) {
			return true
		}
	}
	return hcTokenRe.MatchString(ql)
}

// financialView handles everything answered from the P&L frame alone.
func financialView(question, ql string, pnl *dataset.Frame) *model.Result {
	res := &model.Result{Mode: model.ModeFallback}
	if pnl == nil || pnl.Len() == 0 {
		res.AddNotice("No P&L data loaded; nothing to summarize.")
		return res
	}

	amountCol, notice := extract.AmountColumn(question, pnl)
	if notice != "" {
		res.AddNotice(notice)
	}
	if !pnl.HasColumn(amountCol) {
		res.AddNotice(fmt.Sprintf("The P&L dataset has no '%s' column; cannot aggregate amounts.", amountCol))
		return res
	}

	month, year := extract.MonthYear(question)
	filters := extract.DimensionFilters(question, pnl, extract.PNLCandidates())
	work, _ := extract.ApplyPNL(pnl, filters, month, year)
	if work.Len() == 0 && (len(filters) > 0 || month > 0) {
		res.AddNotice("No rows matched the extracted filters; showing the full dataset instead.")
		work = pnl
	} else if desc := filters.Describe(); desc != "" {
		res.AddNotice("Filters applied: " + desc)
	}

	unit := extract.UnitLabel(amountCol)
	switch {
	case strings.Contains(ql, "margin"):
		marginPivot(res, work, amountCol, unit)
	case strings.Contains(ql, "revenue") || strings.Contains(ql, "cost"):
		typeBreakdown(res, work, amountCol, unit)
	case strings.Contains(ql, "offshore") || strings.Contains(ql, "onsite") || strings.Contains(ql, "onshore"):
		locationSplit(res, work, amountCol, unit)
	case strings.Contains(ql, "realized rate") || strings.Contains(ql, "realised rate") ||
		strings.Contains(ql, "utilization") || strings.Contains(ql, "utilisation"):
		res.AddNotice("This question needs the UT/HR dataset (hours and headcount); the P&L data alone cannot answer it.")
	default:
		genericSummary(res, work, amountCol, unit)
	}
	return res
}

// marginPivot builds a month-by-month revenue/cost/margin table.
// Margin percentage is (Revenue - Cost) / Revenue throughout.
func marginPivot(res *model.Result, f *dataset.Frame, amountCol, unit string) {
	months := monthlyRevCost(f, amountCol)
	if len(months) == 0 {
		res.AddNotice("No rows with a parseable Month and Type; cannot pivot margin by month.")
		return
	}
	res.AddNotice("Margin % is computed as (Revenue - Cost) / Revenue.")
	t := model.Table{
		Title:   fmt.Sprintf("Margin by month (%s)", unit),
		Columns: []string{"Month", "Revenue", "Cost", "Margin", "Margin %"},
	}
	for _, m := range months {
		pct := 0.0
		if m.rev != 0 {
			pct = (m.rev - m.cost) / m.rev * 100
		}
		t.Rows = append(t.Rows, []string{
			m.label,
			render.Money(extract.MillionFloat(m.rev)),
			render.Money(extract.MillionFloat(m.cost)),
			render.Money(extract.MillionFloat(m.rev - m.cost)),
			render.Percent(pct),
		})
	}
	res.AddTable(t)
}

// typeBreakdown groups amounts by month and Type.
func typeBreakdown(res *model.Result, f *dataset.Frame, amountCol, unit string) {
	if !f.HasColumns(dataset.ColMonth, dataset.ColType) {
		res.AddNotice("Month and Type columns are required for a revenue/cost breakdown.")
		return
	}
	months := monthlyRevCost(f, amountCol)
	if len(months) == 0 {
		res.AddNotice("No rows with a parseable Month and Type found.")
		return
	}
	t := model.Table{
		Title:   fmt.Sprintf("Revenue and cost by month (%s)", unit),
		Columns: []string{"Month", "Revenue", "Cost"},
	}
	for _, m := range months {
		t.Rows = append(t.Rows, []string{
			m.label,
			render.Money(extract.MillionFloat(m.rev)),
			render.Money(extract.MillionFloat(m.cost)),
		})
	}
	res.AddTable(t)
}

// locationSplit groups amounts by the first recognizable location-like
// column.
func locationSplit(res *model.Result, f *dataset.Frame, amountCol, unit string) {
	col := f.FirstColumn(locationColumns...)
	if col == "" {
		res.AddNotice(fmt.Sprintf("No location column found (looked for %s); cannot split onsite vs offshore.",
			strings.Join(locationColumns, ", ")))
		return
	}
	groups := f.GroupSum([]string{col}, amountCol)
	t := model.Table{
		Title:   fmt.Sprintf("Amount by %s (%s)", col, unit),
		Columns: []string{col, "Amount"},
	}
	for _, g := range groups {
		label := g.Keys[0]
		if label == "" {
			label = "Unknown"
		}
		t.Rows = append(t.Rows, []string{label, render.Money(extract.MillionFloat(g.Sum))})
	}
	res.AddTable(t)
}

// genericSummary is the catch-all: totals, a monthly breakdown, and a
// split by the first customer-like column.
func genericSummary(res *model.Result, f *dataset.Frame, amountCol, unit string) {
	var rev, cost float64
	for i := 0; i < f.Len(); i++ {
		v, ok := f.Float(i, amountCol)
		if !ok {
			continue
		}
		switch f.Value(i, dataset.ColType) {
		case dataset.TypeRevenue:
			rev += v
		case dataset.TypeCost:
			cost += v
		}
	}
	pct := 0.0
	if rev != 0 {
		pct = (rev - cost) / rev * 100
	}
	summary := model.Table{
		Title:   fmt.Sprintf("Overall summary (%s)", unit),
		Columns: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Revenue", render.Money(extract.MillionFloat(rev))},
			{"Cost", render.Money(extract.MillionFloat(cost))},
			{"Margin", render.Money(extract.MillionFloat(rev - cost))},
			{"Margin %", render.Percent(pct)},
		},
	}
	res.AddTable(summary)

	if months := monthlyRevCost(f, amountCol); len(months) > 0 {
		t := model.Table{
			Title:   fmt.Sprintf("Monthly breakdown (%s)", unit),
			Columns: []string{"Month", "Revenue", "Cost"},
		}
		for _, m := range months {
			t.Rows = append(t.Rows, []string{
				m.label,
				render.Money(extract.MillionFloat(m.rev)),
				render.Money(extract.MillionFloat(m.cost)),
			})
		}
		res.AddTable(t)
	}

	if col := f.FirstColumn(extract.PNLCandidates()[extract.GroupAccount]...); col != "" {
		groups := f.GroupSum([]string{col}, amountCol)
		sort.SliceStable(groups, func(a, b int) bool { return groups[a].Sum > groups[b].Sum })
		if len(groups) > 10 {
			groups = groups[:10]
		}
		t := model.Table{
			Title:   fmt.Sprintf("Top entries by %s (%s)", col, unit),
			Columns: []string{col, "Amount"},
		}
		for _, g := range groups {
			label := g.Keys[0]
			if label == "" {
				label = "Unknown"
			}
			t.Rows = append(t.Rows, []string{label, render.Money(extract.MillionFloat(g.Sum))})
		}
		res.AddTable(t)
	}
}

// headcountView answers headcount questions from the UT frame.
func headcountView(question string, ut *dataset.Frame) *model.Result {
	res := &model.Result{Mode: model.ModeFallback}
	if ut == nil || ut.Len() == 0 {
		res.AddNotice("This looks like a headcount question, but no UT/HR dataset is loaded.")
		return res
	}
	personCol := ut.FirstColumn(dataset.PersonColumns...)
	if personCol == "" {
		res.AddNotice(fmt.Sprintf("No person identifier column found in the UT dataset (looked for %s).",
			strings.Join(dataset.PersonColumns, ", ")))
		return res
	}

	month, year := extract.MonthYear(question)
	filters := extract.DimensionFilters(question, ut, extract.UTCandidates())
	work, _ := extract.ApplyUT(ut, filters, month, year)
	if work.Len() == 0 && (len(filters) > 0 || month > 0) {
		res.AddNotice("No rows matched the extracted filters; showing the full dataset instead.")
		work = ut
	} else if desc := filters.Describe(); desc != "" {
		res.AddNotice("Filters applied: " + desc)
	}

	total, billable := distinctPeople(work, personCol)
	res.AddNotice(fmt.Sprintf("Distinct people: %d", total))
	if work.HasColumn(dataset.ColStatus) {
		summary := model.Table{
			Title:   "Headcount",
			Columns: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Total", strconv.Itoa(total)},
				{"Billable", strconv.Itoa(billable)},
				{"Non-Billable", strconv.Itoa(total - billable)},
			},
		}
		res.AddTable(summary)
	}

	candidates := extract.UTCandidates()
	for _, group := range []string{extract.GroupOrg, extract.GroupSegment} {
		for _, col := range candidates[group] {
			if !work.HasColumn(col) {
				continue
			}
			groups := work.DistinctCount([]string{col}, personCol)
			t := model.Table{
				Title:   fmt.Sprintf("Headcount by %s", col),
				Columns: []string{col, "Headcount"},
			}
			for _, g := range groups {
				label := g.Keys[0]
				if label == "" {
					label = "Unknown"
				}
				t.Rows = append(t.Rows, []string{label, strconv.Itoa(g.Count)})
			}
			res.AddTable(t)
		}
	}

	zap.L().Debug("fallback headcount view built",
		zap.String("person_column", personCol), zap.Int("rows", work.Len()))
	return res
}

func distinctPeople(f *dataset.Frame, personCol string) (total, billable int) {
	all := make(map[string]struct{})
	bill := make(map[string]struct{})
	hasStatus := f.HasColumn(dataset.ColStatus)
	for i := 0; i < f.Len(); i++ {
		p := f.Value(i, personCol)
		if p == "" {
			continue
		}
		all[p] = struct{}{}
		if hasStatus && strings.EqualFold(strings.TrimSpace(f.Value(i, dataset.ColStatus)), "billable") {
			bill[p] = struct{}{}
		}
	}
	return len(all), len(bill)
}

// monthRevCost is one month's revenue and cost, chronologically keyed.
type monthRevCost struct {
	label     string
	order     int
	rev, cost float64
}

func monthlyRevCost(f *dataset.Frame, amountCol string) []monthRevCost {
	index := make(map[int]int)
	var out []monthRevCost
	for i := 0; i < f.Len(); i++ {
		t, ok := f.Time(i, dataset.ColMonth)
		if !ok {
			continue
		}
		v, ok := f.Float(i, amountCol)
		if !ok {
			continue
		}
		key := t.Year()*100 + int(t.Month())
		j, seen := index[key]
		if !seen {
			j = len(out)
			index[key] = j
			out = append(out, monthRevCost{label: t.Format("Jan 2006"), order: key})
		}
		switch f.Value(i, dataset.ColType) {
		case dataset.TypeRevenue:
			out[j].rev += v
		case dataset.TypeCost:
			out[j].cost += v
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].order < out[b].order })
	return out
}
