package dataset

import (
	"strconv"
	"strings"
)

// UT column names, including the derived calendar columns added by
// PreprocessUT.
const (
	ColDateA         = "Date_a"
	ColYear          = "Year"
	ColMonthNum      = "MonthNum"
	ColMonthName     = "MonthName"
	ColBillableHours = "TotalBillableHours"
	ColNetHours      = "NetAvailableHours"
	ColStatus        = "Status"
	ColFresherAgeing = "FresherAgeingCategory"
)

// PersonColumns lists the identifier columns tried, in order, when
// counting distinct people.
var PersonColumns = []string{"PSNo", "Agent", "EmployeeID", "EmpID"}

// PreprocessUT normalizes a raw UT frame: column names are trimmed and
// Year/MonthNum/MonthName are derived from Date_a (or from a numeric
// Month column when Date_a is absent).
func PreprocessUT(raw *Frame) *Frame {
	cols := make([]string, 0, len(raw.cols)+3)
	for _, c := range raw.cols {
		cols = append(cols, strings.TrimSpace(c))
	}
	base := New(cols, raw.rows)

	derive := func(i int) (year, month int, ok bool) {
		if t, found := base.Time(i, ColDateA); found {
			return t.Year(), int(t.Month()), true
		}
		if m, found := base.Float(i, ColMonth); found && m >= 1 && m <= 12 {
			return 0, int(m), true
		}
		return 0, 0, false
	}

	cols = append(cols, ColYear, ColMonthNum, ColMonthName)
	rows := make([][]string, 0, base.Len())
	for i := 0; i < base.Len(); i++ {
		row := make([]string, len(cols))
		copy(row, base.rows[i])
		if year, month, ok := derive(i); ok {
			if year > 0 {
				row[len(cols)-3] = strconv.Itoa(year)
			}
			row[len(cols)-2] = strconv.Itoa(month)
			row[len(cols)-1] = monthShort[month]
		}
		rows = append(rows, row)
	}
	return New(cols, rows)
}

var monthShort = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthShort returns the three-letter name for a 1-12 month number.
func MonthShort(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthShort[m]
}
