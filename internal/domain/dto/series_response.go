package dto

// PointResponse is one element of the series returned by the
// GET /api/v1/sth-realized-price endpoint.
//
// Fields match the JSON artifact written by the fetch pipeline, so API
// consumers and static-file consumers see the same shape.
type PointResponse struct {
	Date        string   `json:"date" example:"2024-01-01"`        // Calendar day, YYYY-MM-DD
	Price       *float64 `json:"price" example:"40000"`            // BTC spot price (USD), null if missing
	MA200       *float64 `json:"ma200" example:"38750.5"`          // Trailing moving average, null until window is full
	STHRealized *float64 `json:"sth_realized" example:"38000.25"`  // STH realized price, null if not numeric
}

// SeriesResponse wraps the ordered series plus its length.
type SeriesResponse struct {
	Count  int             `json:"count" example:"365"`
	Points []PointResponse `json:"points"`
}
