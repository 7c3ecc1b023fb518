package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// FresherUtilization (Q10) breaks the utilization trend down by fresher
// ageing category, so ramp-up of recent joiners is visible month over
// month.
func FresherUtilization(_ context.Context, req Request) (*model.Result, error) {
	if req.UT == nil {
		return nil, ErrMissingUT
	}
	ut := req.UT

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q10"}
	if !ut.HasColumn(dataset.ColFresherAgeing) {
		res.AddNotice(fmt.Sprintf("The UT dataset has no '%s' column; fresher utilization cannot be broken down.",
			dataset.ColFresherAgeing))
		return res, nil
	}
	if !ut.HasColumns(dataset.ColBillableHours, dataset.ColNetHours) {
		res.AddNotice(fmt.Sprintf("The UT dataset needs both '%s' and '%s' to compute utilization.",
			dataset.ColBillableHours, dataset.ColNetHours))
		return res, nil
	}

	type cell struct{ billable, net float64 }
	months := make(map[int]string)
	categories := make(map[string]int) // first-appearance order
	var catOrder []string
	data := make(map[int]map[string]*cell)

	for i := 0; i < ut.Len(); i++ {
		cat := ut.Value(i, dataset.ColFresherAgeing)
		if cat == "" {
			continue
		}
		key, ok := utMonthKey(ut, i)
		if !ok {
			continue
		}
		if _, seen := months[key]; !seen {
			months[key] = utMonthLabel(ut, i, key)
			data[key] = make(map[string]*cell)
		}
		if _, seen := categories[cat]; !seen {
			categories[cat] = len(catOrder)
			catOrder = append(catOrder, cat)
		}
		c := data[key][cat]
		if c == nil {
			c = &cell{}
			data[key][cat] = c
		}
		if v, ok := ut.Float(i, dataset.ColBillableHours); ok {
			c.billable += v
		}
		if v, ok := ut.Float(i, dataset.ColNetHours); ok {
			c.net += v
		}
	}
	if len(months) == 0 {
		res.AddNotice("No rows with a fresher ageing category found in the UT dataset.")
		return res, nil
	}
	sort.Strings(catOrder)

	keys := make([]int, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	if len(keys) > 12 {
		keys = keys[len(keys)-12:]
	}

	t := model.Table{
		Title:   "Fresher utilization by ageing category (UT %)",
		Columns: append([]string{"Month"}, catOrder...),
	}
	for _, key := range keys {
		row := []string{months[key]}
		for _, cat := range catOrder {
			c := data[key][cat]
			if c == nil || c.net == 0 {
				row = append(row, "n/a")
				continue
			}
			row = append(row, render.Percent(c.billable/c.net*100))
		}
		t.Rows = append(t.Rows, row)
	}
	res.AddTable(t)

	res.AddNotice(fmt.Sprintf("Fresher cohorts tracked: %d categories over %d months.", len(catOrder), len(keys)))
	return res, nil
}
