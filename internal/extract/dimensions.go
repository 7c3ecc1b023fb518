package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

// minValueLen is the shortest dimension value considered for substring
// matching; shorter values produce spurious hits.
const minValueLen = 3

// Candidates maps a semantic group to the dataset columns that may
// carry it, in preference order.
type Candidates map[string][]string

// Candidate group names.
const (
	GroupAccount = "account_like"
	GroupSegment = "segment_like"
	GroupOrg     = "org_like"
)

// PNLCandidates returns the dimension columns probed on the P&L frame.
func PNLCandidates() Candidates {
	return Candidates{
		GroupAccount: {"FinalCustomerName", "Account", "Customer", "Client", "Company_code"},
		GroupSegment: {"Segment", "Vertical", "BU", "DU"},
	}
}

// UTCandidates returns the dimension columns probed on the UT frame.
func UTCandidates() Candidates {
	return Candidates{
		GroupAccount: {"FinalCustomerName", "Account", "Customer", "Company_code"},
		GroupSegment: {"Segment", "Vertical"},
		GroupOrg:     {"BU", "DU", "BusinessUnit", "Delivery_Unit"},
	}
}

// Filters maps a column name to the values to match in it. Values are
// OR'd within a column; columns are AND'd against each other.
type Filters map[string][]string

// Describe renders the filter set for captions, with deterministic
// column order.
func (f Filters) Describe() string {
	if len(f) == 0 {
		return ""
	}
	cols := make([]string, 0, len(f))
	for c := range f {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%s contains [%s]", c, strings.Join(f[c], ", ")))
	}
	return strings.Join(parts, "; ")
}

// DimensionFilters collects, for every candidate column present in the
// frame, the distinct column values (length >= 3) that appear in the
// question as a case-insensitive substring. An explicit account token
// is always added to the first available account-like column even when
// it matches no cell value.
func DimensionFilters(q string, f *dataset.Frame, cands Candidates) Filters {
	if f.Len() == 0 {
		return Filters{}
	}
	ql := strings.ToLower(q)
	filters := Filters{}

	if token := AccountToken(q); token != "" {
		for _, col := range cands[GroupAccount] {
			if f.HasColumn(col) {
				filters[col] = append(filters[col], token)
				break
			}
		}
	}

	for _, cols := range cands {
		for _, col := range cols {
			if !f.HasColumn(col) {
				continue
			}
			for _, val := range f.DistinctNonEmpty(col, minValueLen) {
				if strings.Contains(ql, strings.ToLower(val)) {
					filters[col] = append(filters[col], val)
				}
			}
		}
	}
	return filters
}

// ApplyPNL restricts a P&L frame by month/year and dimension filters.
// When a month is given without a year, the year is inferred as the
// most recent year containing that month; the resolved year is
// returned. Dimension matching is case-insensitive substring, OR within
// a column and AND across columns.
func ApplyPNL(f *dataset.Frame, filters Filters, month, year int) (*dataset.Frame, int) {
	return applyTime(f, dataset.ColMonth, filters, month, year)
}

// ApplyUT restricts a UT frame the same way, keyed on the derived
// MonthNum/Year columns when Date_a is unavailable.
func ApplyUT(f *dataset.Frame, filters Filters, month, year int) (*dataset.Frame, int) {
	if f.HasColumn(dataset.ColDateA) {
		return applyTime(f, dataset.ColDateA, filters, month, year)
	}
	work := f
	if month > 0 && work.HasColumn(dataset.ColMonthNum) {
		work = work.Filter(func(i int) bool {
			m, ok := work.Float(i, dataset.ColMonthNum)
			return ok && int(m) == month
		})
	}
	if year > 0 && work.HasColumn(dataset.ColYear) {
		prev := work
		work = prev.Filter(func(i int) bool {
			y, ok := prev.Float(i, dataset.ColYear)
			return ok && int(y) == year
		})
	}
	return applyDimensions(work, filters), year
}

func applyTime(f *dataset.Frame, dateCol string, filters Filters, month, year int) (*dataset.Frame, int) {
	work := f
	if month > 0 && work.HasColumn(dateCol) {
		if year == 0 {
			for i := 0; i < work.Len(); i++ {
				if t, ok := work.Time(i, dateCol); ok && int(t.Month()) == month && t.Year() > year {
					year = t.Year()
				}
			}
		}
		y := year
		work = work.Filter(func(i int) bool {
			t, ok := work.Time(i, dateCol)
			if !ok || int(t.Month()) != month {
				return false
			}
			return y == 0 || t.Year() == y
		})
	}
	return applyDimensions(work, filters), year
}

func applyDimensions(f *dataset.Frame, filters Filters) *dataset.Frame {
	work := f
	for col, values := range filters {
		if !work.HasColumn(col) || len(values) == 0 {
			continue
		}
		prev, c, vals := work, col, values
		work = prev.Filter(func(i int) bool {
			cell := strings.ToLower(prev.Value(i, c))
			for _, v := range vals {
				if strings.Contains(cell, strings.ToLower(v)) {
					return true
				}
			}
			return false
		})
	}
	return work
}
