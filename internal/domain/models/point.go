package models

import "time"

// MetricPoint is one daily observation of the STH realized price series
// after cleaning and derivation.
//
// Fields:
//   - Date: calendar day of the observation (date-only, UTC).
//   - Price: BTC spot price in USD; nil when the source omitted or
//     failed to provide a numeric value.
//   - MA200: trailing moving average of Price; nil until the window is
//     full or when any price inside the window is missing.
//   - STHRealized: the short-term-holder realized price metric; nil when
//     the source value did not coerce to a number.
//
// Nil pointers serialize as JSON null, which is the contract consumed by
// the chart frontend.
type MetricPoint struct {
	Date        time.Time
	Price       *float64
	MA200       *float64
	STHRealized *float64
}

// DateString returns the point's day in the canonical YYYY-MM-DD form
// used by both the JSON artifact and the API.
func (p MetricPoint) DateString() string {
	return p.Date.Format("2006-01-02")
}
