package dataset

import (
	"strings"

	"github.com/rotisserie/eris"
)

// P&L column names the preprocessing and routing layers rely on.
const (
	ColMonth     = "Month"
	ColType      = "Type"
	ColAmountUSD = "Amount in USD"
	ColAmountINR = "Amount in INR"
	ColClient    = "Client"
	ColGroup1    = "Group1"
	ColGroup4    = "Group4"
	ColGroupDesc = "Group Description"
	ColSegment   = "Segment"
)

// Row types after preprocessing.
const (
	TypeRevenue = "Revenue"
	TypeCost    = "Cost"
)

// revenueGroup1 lists the Group1 buckets reclassified as revenue rows.
var revenueGroup1 = map[string]struct{}{
	"ONSITE":           {},
	"OFFSHORE":         {},
	"INDIRECT REVENUE": {},
}

// PreprocessPNL normalizes a raw P&L frame for routing:
// column names are trimmed, Company Code becomes Client, rows whose
// Group1 is a revenue bucket are reclassified Type=Revenue, and only
// Cost/Revenue rows with a parseable Month and amount survive.
func PreprocessPNL(raw *Frame) (*Frame, error) {
	cols := make([]string, len(raw.cols))
	for i, c := range raw.cols {
		cols[i] = strings.TrimSpace(c)
	}
	for i, c := range cols {
		if c == "Company Code" || c == "Company_Code" {
			cols[i] = ColClient
		}
	}

	f := New(cols, raw.rows)

	if !f.HasColumn(ColGroup1) {
		return nil, eris.New("dataset: required column Group1 not found for revenue classification")
	}
	amountCol := f.FirstColumn(ColAmountUSD, ColAmountINR)
	if amountCol == "" {
		return nil, eris.New("dataset: no amount column (Amount in USD / Amount in INR) found")
	}

	typeIdx, hasType := f.index[ColType]
	if !hasType {
		return nil, eris.New("dataset: required column Type not found")
	}

	var rows [][]string
	for i := 0; i < f.Len(); i++ {
		if _, ok := f.Time(i, ColMonth); !ok {
			continue
		}
		if _, ok := f.Float(i, amountCol); !ok {
			continue
		}

		typ := f.Value(i, ColType)
		if _, rev := revenueGroup1[strings.ToUpper(f.Value(i, ColGroup1))]; rev {
			typ = TypeRevenue
		}
		if typ != TypeRevenue && typ != TypeCost {
			continue
		}

		row := make([]string, len(cols))
		copy(row, f.rows[i])
		for len(row) <= typeIdx {
			row = append(row, "")
		}
		row[typeIdx] = typ
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, eris.New("dataset: P&L is empty after preprocessing")
	}
	return New(cols, rows), nil
}
