package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

// groupFields lists the entity groupings offered by the margin reports,
// with the columns that may back each one.
var groupFields = []struct {
	Label      string
	Candidates []string
}{
	{"Client", []string{"FinalCustomerName", "Client", "Account", "Customer", "Company_code"}},
	{"Segment", []string{"Segment", "Vertical"}},
	{"BU", []string{"Exec DG", "BU", "BusinessUnit"}},
	{"DU", []string{"Exec DU", "DU", "Delivery_Unit"}},
}

type periodFn func(t time.Time) (label string, order int)

func monthPeriod(t time.Time) (string, int) {
	return t.Format("Jan 2006"), t.Year()*100 + int(t.Month())
}

func quarterPeriod(t time.Time) (string, int) {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%dQ%d", t.Year(), q), t.Year()*10 + q
}

func yearPeriod(t time.Time) (string, int) {
	return fmt.Sprintf("%d", t.Year()), t.Year()
}

// periodSum is one aggregated value per period label, ordered.
type periodSum struct {
	Label string
	Order int
	Sum   float64
}

// sumByPeriod sums amountCol per period over rows accepted by keep
// (nil keeps all), returned in chronological order.
func sumByPeriod(f *dataset.Frame, amountCol, dateCol string, period periodFn, keep func(i int) bool) []periodSum {
	index := make(map[string]int)
	var out []periodSum
	for i := 0; i < f.Len(); i++ {
		if keep != nil && !keep(i) {
			continue
		}
		t, ok := f.Time(i, dateCol)
		if !ok {
			continue
		}
		v, ok := f.Float(i, amountCol)
		if !ok {
			continue
		}
		label, order := period(t)
		j, seen := index[label]
		if !seen {
			j = len(out)
			index[label] = j
			out = append(out, periodSum{Label: label, Order: order})
		}
		out[j].Sum += v
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out
}

// utMonthKey returns year*100+month for a UT row, matching the Order
// produced by monthPeriod. Rows without a derived year use year 0.
func utMonthKey(f *dataset.Frame, i int) (int, bool) {
	m, ok := f.Float(i, dataset.ColMonthNum)
	if !ok || m < 1 || m > 12 {
		return 0, false
	}
	y, _ := f.Float(i, dataset.ColYear)
	return int(y)*100 + int(m), true
}

// sumUTByMonth sums valueCol per UT month key over rows accepted by
// keep (nil keeps all).
func sumUTByMonth(f *dataset.Frame, valueCol string, keep func(i int) bool) map[int]float64 {
	out := make(map[int]float64)
	for i := 0; i < f.Len(); i++ {
		if keep != nil && !keep(i) {
			continue
		}
		key, ok := utMonthKey(f, i)
		if !ok {
			continue
		}
		v, ok := f.Float(i, valueCol)
		if !ok {
			continue
		}
		out[key] += v
	}
	return out
}

// utLookup reads a month-keyed UT aggregate, falling back to the
// yearless key when the UT file carried no Year column.
func utLookup(m map[int]float64, key int) (float64, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	if v, ok := m[key%100]; ok {
		return v, true
	}
	return 0, false
}

// revCost holds revenue and cost sums for one key.
type revCost struct {
	Key   string
	Order int
	Rev   float64
	Cost  float64
}

// sumRevCostBy aggregates revenue and cost per key over rows accepted
// by keep (nil keeps all). Keys are ordered by the Order value from
// keyOf, ties by first appearance.
func sumRevCostBy(f *dataset.Frame, amountCol string, keyOf func(i int) (string, int, bool), keep func(i int) bool) []revCost {
	index := make(map[string]int)
	var out []revCost
	for i := 0; i < f.Len(); i++ {
		if keep != nil && !keep(i) {
			continue
		}
		key, order, ok := keyOf(i)
		if !ok {
			continue
		}
		v, ok := f.Float(i, amountCol)
		if !ok {
			continue
		}
		j, seen := index[key]
		if !seen {
			j = len(out)
			index[key] = j
			out = append(out, revCost{Key: key, Order: order})
		}
		switch f.Value(i, dataset.ColType) {
		case dataset.TypeRevenue:
			out[j].Rev += v
		case dataset.TypeCost:
			out[j].Cost += v
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out
}

// marginPct is (revenue - cost) / revenue * 100; 0 when revenue is 0.
func marginPct(rev, cost float64) float64 {
	if rev == 0 {
		return 0
	}
	return (rev - cost) / rev * 100
}

// latestMonths returns the distinct months of the frame in ascending
// order.
func latestMonths(f *dataset.Frame, dateCol string) []time.Time {
	seen := make(map[string]time.Time)
	for i := 0; i < f.Len(); i++ {
		if t, ok := f.Time(i, dateCol); ok {
			m := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
			seen[m.Format("2006-01")] = m
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })
	return out
}

// sameMonth reports whether t falls in the calendar month of ref.
func sameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

// detectSegment returns the first distinct Segment value mentioned in
// the question, or fallback when none is.
func detectSegment(question string, f *dataset.Frame, fallback string) string {
	if !f.HasColumn(dataset.ColSegment) {
		return fallback
	}
	ql := strings.ToLower(question)
	for _, seg := range f.DistinctNonEmpty(dataset.ColSegment, 3) {
		if strings.Contains(ql, strings.ToLower(seg)) {
			return seg
		}
	}
	return fallback
}
