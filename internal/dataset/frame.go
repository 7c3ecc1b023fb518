// Package dataset holds the read-only tabular structures the routing
// core operates on, plus the P&L/UT preprocessing applied at load time.
package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Frame is an immutable table of string cells with named columns.
// Rows are shared between derived frames; callers must not mutate them.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New builds a Frame from column names and rows. Short rows are padded
// on access rather than at construction.
func New(cols []string, rows [][]string) *Frame {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return &Frame{cols: cols, index: idx, rows: rows}
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return f.cols
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[name]
	return ok
}

// HasColumns reports whether every named column exists.
func (f *Frame) HasColumns(names ...string) bool {
	for _, n := range names {
		if !f.HasColumn(n) {
			return false
		}
	}
	return true
}

// FirstColumn returns the first of the candidate columns present in the
// frame, or "" when none exist.
func (f *Frame) FirstColumn(candidates ...string) string {
	for _, c := range candidates {
		if f.HasColumn(c) {
			return c
		}
	}
	return ""
}

// Value returns the trimmed cell at (row, col), or "" when the column
// is absent or the row is short.
func (f *Frame) Value(row int, col string) string {
	j, ok := f.index[col]
	if !ok || row < 0 || row >= len(f.rows) || j >= len(f.rows[row]) {
		return ""
	}
	return strings.TrimSpace(f.rows[row][j])
}

// Float parses the cell at (row, col) as a number, tolerating currency
// commas. The second return is false when the cell is empty or not
// numeric.
func (f *Frame) Float(row int, col string) (float64, bool) {
	return parseFloat(f.Value(row, col))
}

// Time parses the cell at (row, col) as a date. The second return is
// false when the cell is empty or unparseable.
func (f *Frame) Time(row int, col string) (time.Time, bool) {
	return parseTime(f.Value(row, col))
}

// Filter returns a frame containing the rows for which keep returns
// true. Rows are shared with the receiver.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	var rows [][]string
	for i := range f.rows {
		if keep(i) {
			rows = append(rows, f.rows[i])
		}
	}
	return &Frame{cols: f.cols, index: f.index, rows: rows}
}

// DistinctNonEmpty returns the distinct trimmed values of a column with
// at least minLen characters, in first-appearance order.
func (f *Frame) DistinctNonEmpty(col string, minLen int) []string {
	if !f.HasColumn(col) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < f.Len(); i++ {
		v := f.Value(i, col)
		if len(v) < minLen {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GroupRow is one aggregated row produced by GroupSum.
type GroupRow struct {
	Keys  []string
	Sum   float64
	Count int
}

// GroupSum sums valueCol grouped by the given columns, in
// first-appearance order of each key combination. Rows whose value cell
// is not numeric contribute zero to the sum but still count.
func (f *Frame) GroupSum(by []string, valueCol string) []GroupRow {
	order := make(map[string]int)
	var groups []GroupRow
	for i := 0; i < f.Len(); i++ {
		keys := make([]string, len(by))
		for j, col := range by {
			keys[j] = f.Value(i, col)
		}
		k := strings.Join(keys, "\x1f")
		idx, ok := order[k]
		if !ok {
			idx = len(groups)
			order[k] = idx
			groups = append(groups, GroupRow{Keys: keys})
		}
		if v, ok := f.Float(i, valueCol); ok {
			groups[idx].Sum += v
		}
		groups[idx].Count++
	}
	return groups
}

// DistinctCount counts distinct non-empty values of countCol grouped by
// the given columns, in first-appearance order.
func (f *Frame) DistinctCount(by []string, countCol string) []GroupRow {
	order := make(map[string]int)
	var groups []GroupRow
	sets := make(map[string]map[string]struct{})
	for i := 0; i < f.Len(); i++ {
		keys := make([]string, len(by))
		for j, col := range by {
			keys[j] = f.Value(i, col)
		}
		k := strings.Join(keys, "\x1f")
		idx, ok := order[k]
		if !ok {
			idx = len(groups)
			order[k] = idx
			groups = append(groups, GroupRow{Keys: keys})
			sets[k] = make(map[string]struct{})
		}
		if v := f.Value(i, countCol); v != "" {
			sets[k][v] = struct{}{}
		}
		groups[idx].Count = len(sets[k])
	}
	return groups
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// timeLayouts covers the date shapes seen in the source workbooks.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
	"Jan-06",
	"2-Jan-06",
	"Jan 2006",
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Excel serial date numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}
