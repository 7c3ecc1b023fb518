package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
)

// monthRow is one month's headcount split, keyed for chronological sort.
type monthRow struct {
	order       int
	label       string
	total       int
	billable    int
	nonBillable int
}

// MonthlyHeadcount (Q7) counts distinct people on the UT dataset per
// month, split billable vs non-billable when a Status column exists.
func MonthlyHeadcount(_ context.Context, req Request) (*model.Result, error) {
	if req.UT == nil {
		return nil, ErrMissingUT
	}
	ut := req.UT

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q7"}
	personCol := ut.FirstColumn(dataset.PersonColumns...)
	if personCol == "" {
		res.AddNotice(fmt.Sprintf("No person identifier column found in the UT dataset (looked for %s).",
			strings.Join(dataset.PersonColumns, ", ")))
		return res, nil
	}

	hasStatus := ut.HasColumn(dataset.ColStatus)
	index := make(map[int]int)
	var months []monthRow
	totals := make(map[int]map[string]struct{})
	billables := make(map[int]map[string]struct{})

	for i := 0; i < ut.Len(); i++ {
		key, ok := utMonthKey(ut, i)
		if !ok {
			continue
		}
		person := ut.Value(i, personCol)
		if person == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = len(months)
			months = append(months, monthRow{order: key, label: utMonthLabel(ut, i, key)})
			totals[key] = make(map[string]struct{})
			billables[key] = make(map[string]struct{})
		}
		totals[key][person] = struct{}{}
		if hasStatus && strings.EqualFold(strings.TrimSpace(ut.Value(i, dataset.ColStatus)), "billable") {
			billables[key][person] = struct{}{}
		}
	}
	if len(months) == 0 {
		res.AddNotice("No months with person records found in the UT dataset.")
		return res, nil
	}

	for j := range months {
		key := months[j].order
		months[j].total = len(totals[key])
		months[j].billable = len(billables[key])
		months[j].nonBillable = months[j].total - months[j].billable
	}
	sort.Slice(months, func(a, b int) bool { return months[a].order < months[b].order })
	if len(months) > 12 {
		months = months[len(months)-12:]
	}

	t := model.Table{Title: "Headcount by month", Columns: []string{"Month", "Headcount"}}
	if hasStatus {
		t.Columns = []string{"Month", "Headcount", "Billable", "Non-Billable"}
	}
	for _, m := range months {
		row := []string{m.label, strconv.Itoa(m.total)}
		if hasStatus {
			row = append(row, strconv.Itoa(m.billable), strconv.Itoa(m.nonBillable))
		}
		t.Rows = append(t.Rows, row)
	}
	res.AddTable(t)

	last := months[len(months)-1]
	res.AddNotice(fmt.Sprintf("Latest month %s has %d people on record.", last.label, last.total))
	if len(months) > 1 {
		first := months[0]
		res.AddNotice(fmt.Sprintf("Headcount changed by %d between %s and %s.",
			last.total-first.total, first.label, last.label))
	}
	return res, nil
}

// utMonthLabel renders a display label for a UT month key, preferring
// the row's MonthName plus year when one was derived.
func utMonthLabel(f *dataset.Frame, row, key int) string {
	name := f.Value(row, dataset.ColMonthName)
	if name == "" {
		name = dataset.MonthShort(key % 100)
	}
	if year := key / 100; year > 0 {
		return fmt.Sprintf("%s %d", name, year)
	}
	return name
}
