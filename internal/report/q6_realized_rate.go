package report

import (
	"context"
	"fmt"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// RealizedRate (Q6) divides monthly revenue by billable hours to show
// the effective billing rate trend.
func RealizedRate(_ context.Context, req Request) (*model.Result, error) {
	if req.UT == nil {
		return nil, ErrMissingUT
	}
	pnl, ut := req.PNL, req.UT
	amountCol, notice := extract.AmountColumn(req.Question, pnl)

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q6"}
	if notice != "" {
		res.AddNotice(notice)
	}
	if !ut.HasColumn(dataset.ColBillableHours) {
		res.AddNotice(fmt.Sprintf("The UT dataset has no '%s' column; realized rate cannot be computed.", dataset.ColBillableHours))
		return res, nil
	}

	revenue := sumByPeriod(pnl, amountCol, dataset.ColMonth, monthPeriod, func(i int) bool {
		return pnl.Value(i, dataset.ColType) == dataset.TypeRevenue
	})
	hours := sumUTByMonth(ut, dataset.ColBillableHours, nil)
	if len(revenue) == 0 || len(hours) == 0 {
		res.AddNotice("No overlapping revenue and billable-hours data found.")
		return res, nil
	}

	if len(revenue) > 12 {
		revenue = revenue[len(revenue)-12:]
	}

	t := model.Table{
		Title:   "Realized rate by month",
		Columns: []string{"Month", "Revenue (Mn USD)", "Billable Hours", "Realized Rate (USD/hr)"},
	}
	var first, last float64
	haveFirst := false
	for _, p := range revenue {
		h, ok := utLookup(hours, p.Order)
		if !ok || h == 0 {
			continue
		}
		rate := p.Sum / h
		t.Rows = append(t.Rows, []string{
			p.Label,
			render.Money(extract.MillionFloat(p.Sum)),
			render.Money(h),
			fmt.Sprintf("%.2f", rate),
		})
		if !haveFirst {
			first, haveFirst = rate, true
		}
		last = rate
	}
	if len(t.Rows) == 0 {
		res.AddNotice("Revenue months and UT months do not overlap; check the two datasets cover the same period.")
		return res, nil
	}
	res.AddTable(t)

	if haveFirst && first != 0 {
		res.AddNotice(fmt.Sprintf("Realized rate moved %.1f%% across the window, ending at %.2f USD/hr.",
			(last-first)/first*100, last))
	}
	return res, nil
}
