package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

func TestMonthYear(t *testing.T) {
	tests := []struct {
		name  string
		q     string
		month int
		year  int
	}{
		{"month with year", "revenue for march 2024", 3, 2024},
		{"full month name", "September 2023 margin", 9, 2023},
		{"sept abbreviation", "cost in sept", 9, 0},
		{"month without year", "what happened in august", 8, 0},
		{"no month", "show me the margin trend", 0, 0},
		{"may as month word", "revenue in May 2025", 5, 2025},
		{"first match wins", "jan vs feb comparison", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, y := MonthYear(tt.q)
			assert.Equal(t, tt.month, m)
			assert.Equal(t, tt.year, y)
		})
	}
}

func TestAccountToken(t *testing.T) {
	assert.Equal(t, "A1", AccountToken("margin for A1 last month"))
	assert.Equal(t, "B-12", AccountToken("show B-12 revenue"))
	assert.Empty(t, AccountToken("no account here"))
	assert.Empty(t, AccountToken("year 2024 alone"))
}

func pnlFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	return dataset.New(
		[]string{"Month", "Type", "Amount in USD", "FinalCustomerName", "Segment"},
		[][]string{
			{"2024-01-01", "Revenue", "1000000", "Acme Corp", "Transportation"},
			{"2024-01-01", "Cost", "700000", "Acme Corp", "Transportation"},
			{"2024-02-01", "Revenue", "2000000", "Globex", "Hi-Tech"},
			{"2024-02-01", "Cost", "900000", "Globex", "Hi-Tech"},
		},
	)
}

func TestDimensionFilters_SubstringMatch(t *testing.T) {
	f := pnlFrame(t)
	filters := DimensionFilters("revenue for acme corp last year", f, PNLCandidates())
	require.Contains(t, filters, "FinalCustomerName")
	assert.Equal(t, []string{"Acme Corp"}, filters["FinalCustomerName"])
}

func TestDimensionFilters_SegmentAndShortValuesIgnored(t *testing.T) {
	f := dataset.New(
		[]string{"Month", "Type", "Amount in USD", "Segment"},
		[][]string{{"2024-01-01", "Revenue", "10", "HT"}},
	)
	// "HT" is below the minimum value length and must not match.
	filters := DimensionFilters("what about ht segment", f, PNLCandidates())
	assert.Empty(t, filters)
}

func TestDimensionFilters_AccountTokenSeedsFilter(t *testing.T) {
	f := pnlFrame(t)
	filters := DimensionFilters("margin for A7", f, PNLCandidates())
	require.Contains(t, filters, "FinalCustomerName")
	assert.Contains(t, filters["FinalCustomerName"], "A7")
}

func TestApplyPNL_MonthAndDimension(t *testing.T) {
	f := pnlFrame(t)
	filters := Filters{"FinalCustomerName": {"Acme"}}
	got, year := ApplyPNL(f, filters, 1, 0)
	assert.Equal(t, 2024, year, "year inferred from the data")
	assert.Equal(t, 2, got.Len())
	for i := 0; i < got.Len(); i++ {
		assert.Equal(t, "Acme Corp", got.Value(i, "FinalCustomerName"))
	}
}

func TestApplyPNL_NoMatchYieldsEmpty(t *testing.T) {
	f := pnlFrame(t)
	got, _ := ApplyPNL(f, Filters{"Segment": {"Energy"}}, 0, 0)
	assert.Zero(t, got.Len())
}

func TestAmountColumn(t *testing.T) {
	usdAndInr := dataset.New([]string{"Amount in USD", "Amount in INR"}, nil)
	inrOnly := dataset.New([]string{"Amount in INR"}, nil)

	col, notice := AmountColumn("what is the margin", usdAndInr)
	assert.Equal(t, dataset.ColAmountUSD, col)
	assert.Empty(t, notice)

	col, notice = AmountColumn("what is the margin", inrOnly)
	assert.Equal(t, dataset.ColAmountINR, col)
	assert.NotEmpty(t, notice, "INR fallback on a financial question must carry a notice")

	col, _ = AmountColumn("how many rows", inrOnly)
	assert.Equal(t, dataset.ColAmountINR, col)
}

func TestUnitLabel(t *testing.T) {
	assert.Equal(t, "USD mn", UnitLabel(dataset.ColAmountUSD))
	assert.Equal(t, "INR mn (USD unavailable)", UnitLabel(dataset.ColAmountINR))
}

func TestToMillion(t *testing.T) {
	assert.Equal(t, "3.0", ToMillion("3000000"))
	assert.Equal(t, "3.0", ToMillion("3,000,000"))
	assert.Equal(t, "-1.5", ToMillion("-1500000"))
	assert.Equal(t, "not a number", ToMillion("not a number"))
}

func TestMillionFloat(t *testing.T) {
	assert.InDelta(t, 1.2, MillionFloat(1_230_000), 1e-9)
	assert.InDelta(t, -1.2, MillionFloat(-1_230_000), 1e-9)
}
