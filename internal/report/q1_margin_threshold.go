package report

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/extract"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

const defaultMarginThreshold = 30

var thresholdPatterns = []*regexp.Regexp{
	regexp.MustCompile(`margin\s*<\s*(\d+)`),
	regexp.MustCompile(`less than\s*(\d+)`),
	regexp.MustCompile(`below\s*(\d+)`),
	regexp.MustCompile(`under\s*(\d+)`),
	regexp.MustCompile(`margin.*?(\d+)\s*%`),
}

// marginThresholdFrom pulls the percentage threshold out of the
// question, defaulting to 30.
func marginThresholdFrom(question string) float64 {
	ql := strings.ToLower(question)
	for _, re := range thresholdPatterns {
		if m := re.FindStringSubmatch(ql); m != nil {
			v, _ := strconv.Atoi(m[1])
			return float64(v)
		}
	}
	return defaultMarginThreshold
}

// MarginBelowThreshold (Q1) lists, per Client/Segment/BU/DU grouping,
// the entities whose margin percentage fell below the asked threshold
// within the requested month or, absent one, the trailing quarter.
func MarginBelowThreshold(_ context.Context, req Request) (*model.Result, error) {
	f := req.PNL
	amountCol, notice := extract.AmountColumn(req.Question, f)

	res := &model.Result{Mode: model.ModePrebuilt, QID: "Q1"}
	if notice != "" {
		res.AddNotice(notice)
	}

	threshold := marginThresholdFrom(req.Question)
	month, year := extract.MonthYear(req.Question)

	// Resolve the analysis window: an explicit month, or the three
	// most recent months as "the last quarter".
	months := latestMonths(f, dataset.ColMonth)
	if len(months) == 0 {
		res.AddNotice("No parseable Month values in the P&L dataset.")
		return res, nil
	}

	var windowStart, windowEnd time.Time
	timeLabel := "the last quarter"
	if month > 0 {
		y := year
		if y == 0 {
			for _, m := range months {
				if int(m.Month()) == month {
					y = m.Year()
				}
			}
		}
		if y == 0 {
			y = months[len(months)-1].Year()
		}
		windowStart = time.Date(y, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		windowEnd = windowStart
		timeLabel = windowStart.Format("January 2006")
	} else {
		windowEnd = months[len(months)-1]
		windowStart = windowEnd.AddDate(0, -2, 0)
	}

	inWindow := func(i int) bool {
		t, ok := f.Time(i, dataset.ColMonth)
		return ok && !t.Before(windowStart) && !t.After(windowEnd.AddDate(0, 1, -1))
	}

	for _, gf := range groupFields {
		col := f.FirstColumn(gf.Candidates...)
		if col == "" {
			continue
		}
		groupCol := col
		grouped := sumRevCostBy(f, amountCol, func(i int) (string, int, bool) {
			v := f.Value(i, groupCol)
			if v == "" {
				v = "Unknown"
			}
			return v, 0, true
		}, inWindow)

		var below []revCost
		for _, g := range grouped {
			if g.Rev > 0 && marginPct(g.Rev, g.Cost) < threshold {
				below = append(below, g)
			}
		}
		sort.Slice(below, func(a, b int) bool {
			return marginPct(below[a].Rev, below[a].Cost) > marginPct(below[b].Rev, below[b].Cost)
		})
		top := below
		if len(top) > 10 {
			top = top[:10]
		}

		proportion := 0.0
		if len(grouped) > 0 {
			proportion = float64(len(below)) / float64(len(grouped)) * 100
		}
		res.AddNotice(fmt.Sprintf(
			"%s — for %s, %d entities had average margin below %.0f%%, which is %.1f%% of all %d entities.",
			gf.Label, timeLabel, len(below), threshold, proportion, len(grouped)))

		if len(top) == 0 {
			continue
		}
		t := model.Table{
			Title:   fmt.Sprintf("Margin %% below %.0f%% by %s (%s)", threshold, gf.Label, timeLabel),
			Columns: []string{gf.Label, "Revenue (Million USD)", "Cost (Million USD)", "Margin %"},
		}
		for _, g := range top {
			t.Rows = append(t.Rows, []string{
				g.Key,
				render.Money(extract.MillionFloat(g.Rev)),
				render.Money(extract.MillionFloat(g.Cost)),
				render.Percent(marginPct(g.Rev, g.Cost)),
			})
		}
		res.AddTable(t)
	}

	return res, nil
}
