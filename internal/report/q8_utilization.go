package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// UtilizationTrend (Q8) shows billable hours over net available hours
// per month as the utilization percentage.
func UtilizationTrend(_ context.Context, req Request) (*model.Result, error) {
	if req.UT == nil {
		return nil, ErrMissingUT
	}
	ut := req.UT

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q8"}
	if !ut.HasColumns(dataset.ColBillableHours, dataset.ColNetHours) {
		res.AddNotice(fmt.Sprintf("The UT dataset needs both '%s' and '%s' to compute utilization.",
			dataset.ColBillableHours, dataset.ColNetHours))
		return res, nil
	}

	billable := sumUTByMonth(ut, dataset.ColBillableHours, nil)
	net := sumUTByMonth(ut, dataset.ColNetHours, nil)

	labels := make(map[int]string)
	for i := 0; i < ut.Len(); i++ {
		if key, ok := utMonthKey(ut, i); ok {
			if _, seen := labels[key]; !seen {
				labels[key] = utMonthLabel(ut, i, key)
			}
		}
	}

	keys := make([]int, 0, len(billable))
	for key := range billable {
		if _, ok := net[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Ints(keys)
	if len(keys) == 0 {
		res.AddNotice("No months with both billable and net available hours found.")
		return res, nil
	}
	if len(keys) > 12 {
		keys = keys[len(keys)-12:]
	}

	t := model.Table{
		Title:   "Utilization by month",
		Columns: []string{"Month", "Billable Hours", "Net Available Hours", "UT %"},
	}
	var first, last float64
	for i, key := range keys {
		pct := 0.0
		if net[key] != 0 {
			pct = billable[key] / net[key] * 100
		}
		t.Rows = append(t.Rows, []string{
			labels[key],
			render.Money(billable[key]),
			render.Money(net[key]),
			render.Percent(pct),
		})
		if i == 0 {
			first = pct
		}
		last = pct
	}
	res.AddTable(t)

	res.AddNotice(fmt.Sprintf("Utilization ended at %s in %s.", render.Percent(last), labels[keys[len(keys)-1]]))
	if len(keys) > 1 {
		res.AddNotice(fmt.Sprintf("Utilization moved %.1f points across the window.", last-first))
	}
	return res, nil
}
