package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// CBRevenueTrend (Q4) tracks C&B cost against revenue over time. The
// period granularity follows the question: quarterly for "qoq"/"quarter",
// yearly for "yoy"/"annual", monthly otherwise.
func CBRevenueTrend(_ context.Context, req Request) (*model.Result, error) {
	f := req.PNL
	amountCol, notice := extract.AmountColumn(req.Question, f)

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q4"}
	if notice != "" {
		res.AddNotice(notice)
	}
	if !f.HasColumn(dataset.ColGroupDesc) {
		res.AddNotice("The P&L dataset has no 'Group Description' column; C&B cost cannot be isolated.")
		return res, nil
	}

	period, periodName, maxPeriods := monthPeriod, "Month", 12
	ql := strings.ToLower(req.Question)
	switch {
	case strings.Contains(ql, "qoq") || strings.Contains(ql, "quarter"):
		period, periodName, maxPeriods = quarterPeriod, "Quarter", 8
	case strings.Contains(ql, "yoy") || strings.Contains(ql, "year") || strings.Contains(ql, "annual"):
		period, periodName, maxPeriods = yearPeriod, "Year", 5
	}

	cb := sumByPeriod(f, amountCol, dataset.ColMonth, period, func(i int) bool {
		return isCBRow(f, i)
	})
	rev := sumByPeriod(f, amountCol, dataset.ColMonth, period, func(i int) bool {
		return f.Value(i, dataset.ColType) == dataset.TypeRevenue
	})
	if len(cb) == 0 || len(rev) == 0 {
		res.AddNotice("Not enough data to compare C&B cost with revenue.")
		return res, nil
	}

	revByLabel := make(map[string]float64, len(rev))
	for _, p := range rev {
		revByLabel[p.Label] = p.Sum
	}
	if len(cb) > maxPeriods {
		cb = cb[len(cb)-maxPeriods:]
	}

	t := model.Table{
		Title:   fmt.Sprintf("C&B cost vs revenue by %s (Mn USD)", strings.ToLower(periodName)),
		Columns: []string{periodName, "C&B Cost", "Revenue", "C&B % of Revenue", "C&B Change %"},
	}
	var prevCB float64
	for i, p := range cb {
		r := revByLabel[p.Label]
		share := "n/a"
		if r != 0 {
			share = render.Percent(p.Sum / r * 100)
		}
		change := "n/a"
		if i > 0 && prevCB != 0 {
			change = render.Percent((p.Sum - prevCB) / prevCB * 100)
		}
		t.Rows = append(t.Rows, []string{
			p.Label,
			render.Money(extract.MillionFloat(p.Sum)),
			render.Money(extract.MillionFloat(r)),
			share,
			change,
		})
		prevCB = p.Sum
	}
	res.AddTable(t)

	first, last := cb[0], cb[len(cb)-1]
	if first.Sum != 0 {
		res.AddNotice(fmt.Sprintf("C&B cost moved %.1f%% between %s and %s.",
			(last.Sum-first.Sum)/first.Sum*100, first.Label, last.Label))
	}
	if r := revByLabel[last.Label]; r != 0 {
		res.AddNotice(fmt.Sprintf("In %s, C&B cost was %.1f%% of revenue.", last.Label, last.Sum/r*100))
	}
	return res, nil
}
