package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// cbGroupDescriptions are the Group Description values that make up
// compensation-and-benefits cost.
var cbGroupDescriptions = map[string]struct{}{
	"Onsite Salaries & Allowances":     {},
	"Cost of Onsite TPCs/Retainers":    {},
	"C&B Cost Offshore":                {},
	"Professional Fee - Retainers/TPC": {},
}

func isCBRow(f *dataset.Frame, i int) bool {
	_, ok := cbGroupDescriptions[f.Value(i, dataset.ColGroupDesc)]
	return ok
}

// CBQuarterVariance (Q3) compares C&B cost by segment across the two
// most recent quarters.
func CBQuarterVariance(_ context.Context, req Request) (*model.Result, error) {
	f := req.PNL
	amountCol, notice := extract.AmountColumn(req.Question, f)

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q3"}
	if notice != "" {
		res.AddNotice(notice)
	}
	if !f.HasColumn(dataset.ColGroupDesc) {
		res.AddNotice("The P&L dataset has no 'Group Description' column; C&B cost cannot be isolated.")
		return res, nil
	}

	// C&B totals per quarter, to find the two most recent.
	quarters := sumByPeriod(f, amountCol, dataset.ColMonth, quarterPeriod, func(i int) bool {
		return isCBRow(f, i)
	})
	if len(quarters) < 2 {
		res.AddNotice("Need at least two quarters of C&B cost to compare.")
		return res, nil
	}
	prevQ := quarters[len(quarters)-2]
	lastQ := quarters[len(quarters)-1]

	totalDelta := lastQ.Sum - prevQ.Sum
	totalPct := 0.0
	if prevQ.Sum != 0 {
		totalPct = totalDelta / prevQ.Sum * 100
	}
	res.AddNotice(fmt.Sprintf("C&B cost moved %.1f Mn USD (%.1f%%) from %s to %s.",
		extract.MillionFloat(totalDelta), totalPct, prevQ.Label, lastQ.Label))

	segCol := f.FirstColumn(dataset.ColSegment, "Vertical")
	if segCol == "" {
		res.AddNotice("No segment column found for a per-segment breakdown.")
		return res, nil
	}

	perSeg := make(map[string][2]float64)
	for i := 0; i < f.Len(); i++ {
		if !isCBRow(f, i) {
			continue
		}
		t, ok := f.Time(i, dataset.ColMonth)
		if !ok {
			continue
		}
		v, ok := f.Float(i, amountCol)
		if !ok {
			continue
		}
		label, _ := quarterPeriod(t)
		seg := f.Value(i, segCol)
		if seg == "" {
			seg = "Unknown"
		}
		sums := perSeg[seg]
		switch label {
		case prevQ.Label:
			sums[0] += v
		case lastQ.Label:
			sums[1] += v
		default:
			continue
		}
		perSeg[seg] = sums
	}

	type segDelta struct {
		seg                string
		prev, last, change float64
	}
	var rows []segDelta
	for seg, sums := range perSeg {
		rows = append(rows, segDelta{seg, sums[0], sums[1], sums[1] - sums[0]})
	}
	sort.Slice(rows, func(a, b int) bool {
		if abs(rows[a].change) != abs(rows[b].change) {
			return abs(rows[a].change) > abs(rows[b].change)
		}
		return rows[a].seg < rows[b].seg
	})

	t := model.Table{
		Title:   fmt.Sprintf("C&B cost by %s, %s vs %s (Mn USD)", segCol, prevQ.Label, lastQ.Label),
		Columns: []string{segCol, prevQ.Label, lastQ.Label, "Change", "% Change"},
	}
	for _, r := range rows {
		pct := 0.0
		if r.prev != 0 {
			pct = r.change / r.prev * 100
		}
		t.Rows = append(t.Rows, []string{
			r.seg,
			render.Money(extract.MillionFloat(r.prev)),
			render.Money(extract.MillionFloat(r.last)),
			render.Money(extract.MillionFloat(r.change)),
			render.Percent(pct),
		})
	}
	res.AddTable(t)
	return res, nil
}
