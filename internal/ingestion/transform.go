package ingestion

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/sthpulse/internal/domain/models"
)

// dateLayouts are tried in order when parsing the date column. The API
// normally sends plain calendar dates; timestamp variants show up on the
// unversioned endpoint.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// BuildSeries turns a parsed table plus resolved columns into the sorted
// output series, applying the row-level tolerance rules:
//
//   - a row whose date does not parse is dropped silently
//   - a metric or price value that does not coerce to a float becomes nil
//     (the row survives)
//   - remaining rows are sorted ascending by date; duplicate dates are
//     kept as-is, the sort is stable
//
// The trailing moving average is computed over the price column with the
// given window, indexed by post-sort row position: a row gets a value
// only when its own price and the window-1 prices before it are all
// present. Without a resolved price column every Price and MA200 is nil.
func BuildSeries(t *Table, cols ResolvedColumns, window int) []models.MetricPoint {
	points := make([]models.MetricPoint, 0, len(t.Rows))

	for _, row := range t.Rows {
		d, ok := parseDate(row[cols.Date])
		if !ok {
			// Bad date → drop the row, not the run.
			continue
		}

		p := models.MetricPoint{
			Date:        d,
			STHRealized: parseFloat(row[cols.Metric]),
		}
		if cols.HasPrice() {
			p.Price = parseFloat(row[cols.Price])
		}
		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	if cols.HasPrice() {
		applyMovingAverage(points, window)
	}

	return points
}

// applyMovingAverage fills MA200 for each point whose trailing window of
// prices is fully populated. Runs in one pass keeping a rolling sum; any
// nil price resets the run.
func applyMovingAverage(points []models.MetricPoint, window int) {
	if window < 1 {
		return
	}

	sum := 0.0
	run := 0 // consecutive non-nil prices ending at the current row

	for i := range points {
		if points[i].Price == nil {
			sum, run = 0, 0
			continue
		}

		sum += *points[i].Price
		run++
		if run > window {
			sum -= *points[i-window].Price
			run = window
		}
		if run == window {
			avg := sum / float64(window)
			points[i].MA200 = &avg
		}
	}
}

// parseDate coerces a raw cell to a date-only time, trying each known
// layout. The clock part, when present, is discarded.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDate(t.UTC()), true
		}
	}
	return time.Time{}, false
}

// parseFloat coerces a raw cell to a float, nil when empty or malformed.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
