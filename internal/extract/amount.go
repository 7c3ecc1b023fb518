package extract

import (
	"strconv"
	"strings"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

// financialKeywords signal a revenue/cost/margin question that should
// be answered in USD when available.
var financialKeywords = []string{
	"revenue", "cost", "margin", "c&b", "c & b", "c and b", "profit", "loss",
	"cogs", "gross margin", "gm%", "gm %", "cm%", "cm %",
}

// AmountColumn selects the monetary column for a question. Financial
// questions prefer Amount in USD, falling back to Amount in INR with a
// user-visible notice; non-financial questions prefer INR. The selected
// name is returned even when absent from the frame so missing data
// surfaces upstream rather than crashing here.
func AmountColumn(q string, f *dataset.Frame) (col, notice string) {
	ql := strings.ToLower(q)
	financial := false
	for _, k := range financialKeywords {
		if strings.Contains(ql, k) {
			financial = true
			break
		}
	}
	hasUSD := f.HasColumn(dataset.ColAmountUSD)
	hasINR := f.HasColumn(dataset.ColAmountINR)

	if financial {
		switch {
		case hasUSD:
			return dataset.ColAmountUSD, ""
		case hasINR:
			return dataset.ColAmountINR, "Note: 'Amount in USD' not found — using 'Amount in INR' for this financial question."
		default:
			return dataset.ColAmountUSD, ""
		}
	}
	switch {
	case hasINR:
		return dataset.ColAmountINR, ""
	case hasUSD:
		return dataset.ColAmountUSD, ""
	default:
		return dataset.ColAmountINR, ""
	}
}

// UnitLabel names the display unit for a selected amount column.
func UnitLabel(col string) string {
	if strings.EqualFold(strings.TrimSpace(col), dataset.ColAmountUSD) {
		return "USD mn"
	}
	return "INR mn (USD unavailable)"
}

// ToMillion converts a raw cell to millions with one decimal place.
// Non-numeric input is returned unchanged rather than failing.
func ToMillion(value string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return value
	}
	return strconv.FormatFloat(MillionFloat(v), 'f', 1, 64)
}

// MillionFloat divides by 1e6 and rounds to one decimal place.
func MillionFloat(v float64) float64 {
	m := v / 1e6
	if m < 0 {
		return float64(int64(m*10-0.5)) / 10
	}
	return float64(int64(m*10+0.5)) / 10
}
