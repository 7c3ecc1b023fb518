package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// RevenuePerPerson (Q9) divides monthly revenue by the distinct number
// of people on the UT dataset that month.
func RevenuePerPerson(_ context.Context, req Request) (*model.Result, error) {
	if req.UT == nil {
		return nil, ErrMissingUT
	}
	pnl, ut := req.PNL, req.UT
	amountCol, notice := extract.AmountColumn(req.Question, pnl)

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q9"}
	if notice != "" {
		res.AddNotice(notice)
	}
	personCol := ut.FirstColumn(dataset.PersonColumns...)
	if personCol == "" {
		res.AddNotice(fmt.Sprintf("No person identifier column found in the UT dataset (looked for %s).",
			strings.Join(dataset.PersonColumns, ", ")))
		return res, nil
	}

	revenue := sumByPeriod(pnl, amountCol, dataset.ColMonth, monthPeriod, func(i int) bool {
		return pnl.Value(i, dataset.ColType) == dataset.TypeRevenue
	})
	if len(revenue) > 12 {
		revenue = revenue[len(revenue)-12:]
	}

	// Distinct people per UT month key.
	people := make(map[int]map[string]struct{})
	for i := 0; i < ut.Len(); i++ {
		key, ok := utMonthKey(ut, i)
		if !ok {
			continue
		}
		person := ut.Value(i, personCol)
		if person == "" {
			continue
		}
		if people[key] == nil {
			people[key] = make(map[string]struct{})
		}
		people[key][person] = struct{}{}
	}
	headcount := func(key int) (int, bool) {
		if set, ok := people[key]; ok {
			return len(set), true
		}
		if set, ok := people[key%100]; ok {
			return len(set), true
		}
		return 0, false
	}

	t := model.Table{
		Title:   "Revenue per person by month",
		Columns: []string{"Month", "Revenue (Mn USD)", "Headcount", "Revenue per Person (USD)"},
	}
	var first, last float64
	haveFirst := false
	for _, p := range revenue {
		hc, ok := headcount(p.Order)
		if !ok || hc == 0 {
			continue
		}
		perHead := p.Sum / float64(hc)
		t.Rows = append(t.Rows, []string{
			p.Label,
			render.Money(extract.MillionFloat(p.Sum)),
			strconv.Itoa(hc),
			render.Money(perHead),
		})
		if !haveFirst {
			first, haveFirst = perHead, true
		}
		last = perHead
	}
	if len(t.Rows) == 0 {
		res.AddNotice("Revenue months and UT months do not overlap; check the two datasets cover the same period.")
		return res, nil
	}
	res.AddTable(t)

	if haveFirst && first != 0 {
		res.AddNotice(fmt.Sprintf("Revenue per person moved %.1f%% across the window.", (last-first)/first*100))
	}
	return res, nil
}
