package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

// CostDrivenMarginDrop (Q2) explains a month-over-month margin drop in
// one segment by ranking the Group4 cost buckets with the largest
// absolute increases.
func CostDrivenMarginDrop(_ context.Context, req Request) (*model.Result, error) {
	f := req.PNL
	amountCol, notice := extract.AmountColumn(req.Question, f)

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q2"}
	if notice != "" {
		res.AddNotice(notice)
	}

	segment := detectSegment(req.Question, f, "Transportation")
	seg := f.Filter(func(i int) bool {
		return f.Value(i, dataset.ColSegment) == segment
	})

	months := latestMonths(seg, dataset.ColMonth)
	if len(months) < 2 {
		res.AddNotice(fmt.Sprintf("Not enough monthly data for segment %s to compare two months.", segment))
		return res, nil
	}
	latest := months[len(months)-1]
	prev := months[len(months)-2]

	prevRC := sumRevCostWindow(seg, amountCol, prev)
	latestRC := sumRevCostWindow(seg, amountCol, latest)

	prevPct := marginPct(prevRC.Rev, prevRC.Cost)
	latestPct := marginPct(latestRC.Rev, latestRC.Cost)
	change := latestPct - prevPct
	direction := "reduced"
	if change > 0 {
		direction = "increased"
	}
	res.AddNotice(fmt.Sprintf(
		"%s margin %s %.1f points from %s to %s (%.1f%% to %.1f%%).",
		segment, direction, abs(change), prev.Format("Jan"), latest.Format("Jan"), prevPct, latestPct))

	if prevRC.Cost > 0 {
		growth := (latestRC.Cost - prevRC.Cost) / prevRC.Cost * 100
		verb := "increased"
		if growth < 0 {
			verb = "decreased"
		}
		res.AddNotice(fmt.Sprintf("%s cost %s by %.1f%% from %s to %s.",
			segment, verb, abs(growth), prev.Format("Jan"), latest.Format("Jan")))
	}

	if clientCol := seg.FirstColumn("FinalCustomerName", "Client", "Account", "Customer", "Company_code"); clientCol != "" {
		type pair struct{ prev, latest revCost }
		clients := make(map[string]*pair)
		for _, c := range sumRevCostByColumn(seg, amountCol, clientCol, prev) {
			clients[c.Key] = &pair{prev: c}
		}
		for _, c := range sumRevCostByColumn(seg, amountCol, clientCol, latest) {
			if p, ok := clients[c.Key]; ok {
				p.latest = c
			} else {
				clients[c.Key] = &pair{latest: c}
			}
		}
		dropped, total := 0, len(clients)
		for _, p := range clients {
			if marginPct(p.latest.Rev, p.latest.Cost) < marginPct(p.prev.Rev, p.prev.Cost) {
				dropped++
			}
		}
		if total > 0 {
			res.AddNotice(fmt.Sprintf("%d out of %d clients (%.1f%%) in %s saw a drop in margin.",
				dropped, total, float64(dropped)/float64(total)*100, segment))
		}
	}

	if !seg.HasColumn(dataset.ColGroup4) {
		res.AddNotice("Missing Group4 cost data for a cost-bucket breakdown.")
		return res, nil
	}
	prevBuckets := costBuckets(seg, amountCol, prev)
	latestBuckets := costBuckets(seg, amountCol, latest)

	type bucketDelta struct {
		name               string
		prev, latest, diff float64
	}
	var deltas []bucketDelta
	for name, latestSum := range latestBuckets {
		if d := latestSum - prevBuckets[name]; d > 0 {
			deltas = append(deltas, bucketDelta{name, prevBuckets[name], latestSum, d})
		}
	}
	sort.Slice(deltas, func(a, b int) bool {
		if deltas[a].diff != deltas[b].diff {
			return deltas[a].diff > deltas[b].diff
		}
		return deltas[a].name < deltas[b].name
	})
	if len(deltas) > 8 {
		deltas = deltas[:8]
	}
	if len(deltas) == 0 {
		res.AddNotice("No Group4 cost bucket increased between the two months.")
		return res, nil
	}

	t := model.Table{
		Title: fmt.Sprintf("Top Group4 cost increases, %s to %s (Mn USD)",
			prev.Format("Jan"), latest.Format("Jan")),
		Columns: []string{"Group4", prev.Format("Jan") + " (Mn USD)", latest.Format("Jan") + " (Mn USD)", "% Change"},
	}
	for _, d := range deltas {
		pct := 0.0
		if d.prev != 0 {
			pct = (d.latest - d.prev) / d.prev * 100
		}
		t.Rows = append(t.Rows, []string{
			d.name,
			render.Money(extract.MillionFloat(d.prev)),
			render.Money(extract.MillionFloat(d.latest)),
			render.Percent(pct),
		})
	}
	res.AddTable(t)
	return res, nil
}

// sumRevCostWindow sums revenue and cost within one calendar month.
func sumRevCostWindow(f *dataset.Frame, amountCol string, month time.Time) revCost {
	out := revCost{}
	for i := 0; i < f.Len(); i++ {
		t, ok := f.Time(i, dataset.ColMonth)
		if !ok || !sameMonth(t, month) {
			continue
		}
		v, ok := f.Float(i, amountCol)
		if !ok {
			continue
		}
		switch f.Value(i, dataset.ColType) {
		case dataset.TypeRevenue:
			out.Rev += v
		case dataset.TypeCost:
			out.Cost += v
		}
	}
	return out
}

// sumRevCostByColumn sums revenue and cost per value of groupCol within
// one calendar month.
func sumRevCostByColumn(f *dataset.Frame, amountCol, groupCol string, month time.Time) []revCost {
	return sumRevCostBy(f, amountCol, func(i int) (string, int, bool) {
		v := f.Value(i, groupCol)
		if v == "" {
			v = "Unknown"
		}
		return v, 0, true
	}, func(i int) bool {
		t, ok := f.Time(i, dataset.ColMonth)
		return ok && sameMonth(t, month)
	})
}

// costBuckets sums cost rows per Group4 bucket within one month.
func costBuckets(f *dataset.Frame, amountCol string, month time.Time) map[string]float64 {
	out := make(map[string]float64)
	for i := 0; i < f.Len(); i++ {
		if f.Value(i, dataset.ColType) != dataset.TypeCost {
			continue
		}
		bucket := f.Value(i, dataset.ColGroup4)
		if bucket == "" {
			continue
		}
		t, ok := f.Time(i, dataset.ColMonth)
		if !ok || !sameMonth(t, month) {
			continue
		}
		if v, ok := f.Float(i, amountCol); ok {
			out[bucket] += v
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
