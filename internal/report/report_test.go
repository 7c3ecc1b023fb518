package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
)

func pnlFixture() *dataset.Frame {
	return dataset.New(
		[]string{"Month", "Type", "Amount in USD", "FinalCustomerName", "Segment", "Group4", "Group Description"},
		[][]string{
			// LowMargin Co: 20% margin in Jan 2024.
			{"2024-01-01", "Revenue", "1000000", "LowMargin Co", "Transportation", "", ""},
			{"2024-01-01", "Cost", "800000", "LowMargin Co", "Transportation", "Salaries", "Onsite Salaries & Allowances"},
			// HighMargin Co: 60% margin in Jan 2024.
			{"2024-01-01", "Revenue", "2000000", "HighMargin Co", "Hi-Tech", "", ""},
			{"2024-01-01", "Cost", "800000", "HighMargin Co", "Hi-Tech", "Subcontract", "C&B Cost Offshore"},
			// Q2 2024 C&B rows for variance.
			{"2024-04-01", "Revenue", "1500000", "LowMargin Co", "Transportation", "", ""},
			{"2024-04-01", "Cost", "900000", "LowMargin Co", "Transportation", "Salaries", "Onsite Salaries & Allowances"},
		},
	)
}

func utFixture() *dataset.Frame {
	raw := dataset.New(
		[]string{"Date_a", "PSNo", "TotalBillableHours", "NetAvailableHours", "Status", "FresherAgeingCategory"},
		[][]string{
			{"2024-01-10", "p1", "120", "160", "Billable", "0-3 months"},
			{"2024-01-10", "p2", "0", "160", "Non-Billable", ""},
			{"2024-04-10", "p1", "140", "160", "Billable", "3-6 months"},
			{"2024-04-10", "p3", "100", "160", "Billable", ""},
		},
	)
	return dataset.PreprocessUT(raw)
}

func TestMarginThresholdFrom(t *testing.T) {
	assert.Equal(t, 30.0, marginThresholdFrom("margin trend please"))
	assert.Equal(t, 25.0, marginThresholdFrom("margin < 25"))
	assert.Equal(t, 40.0, marginThresholdFrom("accounts below 40 percent"))
	assert.Equal(t, 15.0, marginThresholdFrom("margin under 15%"))
}

func TestMarginBelowThreshold(t *testing.T) {
	res, err := MarginBelowThreshold(context.Background(), Request{
		PNL:      pnlFixture(),
		Question: "margin less than 30% in jan 2024",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ModePrebuilt, res.Mode)
	assert.Equal(t, "Q1", res.QID)

	require.NotEmpty(t, res.Tables)
	clientTable := res.Tables[0]
	require.Len(t, clientTable.Rows, 1, "only the sub-threshold client is listed")
	assert.Equal(t, "LowMargin Co", clientTable.Rows[0][0])
}

func TestCBQuarterVariance(t *testing.T) {
	res, err := CBQuarterVariance(context.Background(), Request{
		PNL:      pnlFixture(),
		Question: "how did C&B vary quarter over quarter",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q3", res.QID)
	require.NotEmpty(t, res.Tables)

	seg := res.Tables[0]
	assert.Contains(t, seg.Columns, "2024Q1")
	assert.Contains(t, seg.Columns, "2024Q2")
	require.NotEmpty(t, seg.Rows)
}

func TestCBRevenueTrend(t *testing.T) {
	res, err := CBRevenueTrend(context.Background(), Request{
		PNL:      pnlFixture(),
		Question: "c&b cost vs revenue by quarter",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Tables)
	tbl := res.Tables[0]
	assert.Equal(t, "Quarter", tbl.Columns[0])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "2024Q1", tbl.Rows[0][0])
	assert.Equal(t, "2024Q2", tbl.Rows[1][0])
}

func TestRealizedRate(t *testing.T) {
	res, err := RealizedRate(context.Background(), Request{
		PNL:      pnlFixture(),
		UT:       utFixture(),
		Question: "realized rate trend",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Tables)
	// Jan 2024: 3.0M revenue over 120 billable hours.
	assert.Equal(t, "Jan 2024", res.Tables[0].Rows[0][0])
}

func TestRealizedRate_MissingUT(t *testing.T) {
	_, err := RealizedRate(context.Background(), Request{PNL: pnlFixture(), Question: "realized rate"})
	assert.ErrorIs(t, err, ErrMissingUT)
}

func TestMonthlyHeadcount(t *testing.T) {
	res, err := MonthlyHeadcount(context.Background(), Request{
		PNL:      pnlFixture(),
		UT:       utFixture(),
		Question: "monthly headcount",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Tables)

	tbl := res.Tables[0]
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Jan 2024", "2", "1", "1"}, tbl.Rows[0])
	assert.Equal(t, []string{"Apr 2024", "2", "2", "0"}, tbl.Rows[1])
}

func TestUtilizationTrend(t *testing.T) {
	res, err := UtilizationTrend(context.Background(), Request{
		UT:       utFixture(),
		Question: "utilization trend",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Tables)

	tbl := res.Tables[0]
	require.Len(t, tbl.Rows, 2)
	// Jan 2024: 120 billable / 320 net available.
	assert.Equal(t, "Jan 2024", tbl.Rows[0][0])
	assert.Equal(t, "37.5%", tbl.Rows[0][3])
}

func TestRevenuePerPerson(t *testing.T) {
	res, err := RevenuePerPerson(context.Background(), Request{
		PNL:      pnlFixture(),
		UT:       utFixture(),
		Question: "revenue per person",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Tables)
	require.Len(t, res.Tables[0].Rows, 2)
	// Jan 2024: 3.0M revenue over 2 people.
	assert.Equal(t, "Jan 2024", res.Tables[0].Rows[0][0])
	assert.Equal(t, "2", res.Tables[0].Rows[0][2])
}

func TestFresherUtilization(t *testing.T) {
	res, err := FresherUtilization(context.Background(), Request{
		UT:       utFixture(),
		Question: "fresher utilization",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Tables)

	tbl := res.Tables[0]
	assert.Equal(t, []string{"Month", "0-3 months", "3-6 months"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "75.0%", tbl.Rows[0][1], "Jan 0-3 months cohort: 120/160")
	assert.Equal(t, "n/a", tbl.Rows[0][2])
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"Q1", "Q10", "Q2", "Q3", "Q4", "Q6", "Q7", "Q8", "Q9"}, r.QIDs())

	_, err := r.Lookup("Q5")
	assert.ErrorIs(t, err, ErrNotRegistered)

	rep, err := r.Lookup("Q1")
	require.NoError(t, err)
	assert.NotNil(t, rep)
}

func TestCostDrivenMarginDrop(t *testing.T) {
	res, err := CostDrivenMarginDrop(context.Background(), Request{
		PNL:      pnlFixture(),
		Question: "which cost caused the margin drop in transportation",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q2", res.QID)

	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], "Transportation margin increased 20.0 points")

	require.Len(t, res.Tables, 1)
	require.Len(t, res.Tables[0].Rows, 1)
	assert.Equal(t, []string{"Salaries", "0.8", "0.9", "12.5%"}, res.Tables[0].Rows[0])
}

func TestCostDrivenMarginDropNeedsTwoMonths(t *testing.T) {
	single := dataset.New(
		[]string{"Month", "Type", "Amount in USD", "Segment", "Group4"},
		[][]string{{"2024-01-01", "Revenue", "1000000", "Transportation", ""}},
	)
	res, err := CostDrivenMarginDrop(context.Background(), Request{
		PNL:      single,
		Question: "margin drop in transportation",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Tables)
	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], "Not enough monthly data")
}
