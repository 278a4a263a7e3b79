package ingestion

import (
	"fmt"
	"strings"
)

// Candidate header names per semantic role, in priority order. All
// lowercase; matching is case-insensitive against trimmed headers.
var (
	dateCandidates   = []string{"date", "time", "timestamp"}
	priceCandidates  = []string{"price", "btc_price", "btcprice", "usd_price", "price_usd"}
	metricCandidates = []string{
		"sth_realized_price",
		"sthrealizedprice",
		"sth_realized",
		"realized_price",
		"realizedprice",
		"value",
	}
)

// ResolvedColumns maps the three semantic roles to the original column
// names present in a Table. Price is empty when no price column exists
// and price is not required; Date and Metric are always set on success.
type ResolvedColumns struct {
	Date   string
	Price  string
	Metric string
}

// HasPrice reports whether a price column was resolved.
func (rc ResolvedColumns) HasPrice() bool { return rc.Price != "" }

// ResolveColumns finds the date, price, and metric columns of a table by
// case-insensitive lookup against the candidate lists above, returning
// the first match per role.
//
// requirePrice selects between the two observed upstream behaviors: when
// false (the default), a missing price column is tolerated and the
// pipeline emits null price/ma200 for every row; when true, resolution
// fails unless all three roles match.
//
// On failure the error names which roles did and did not resolve plus
// every column seen, since diagnosing a renamed upstream header is the
// whole point of this layer.
func ResolveColumns(columns []string, requirePrice bool) (ResolvedColumns, error) {
	lower := make(map[string]string, len(columns))
	for _, c := range columns {
		lower[strings.ToLower(strings.TrimSpace(c))] = c
	}

	rc := ResolvedColumns{
		Date:   pickColumn(lower, dateCandidates),
		Price:  pickColumn(lower, priceCandidates),
		Metric: pickColumn(lower, metricCandidates),
	}

	missing := rc.Date == "" || rc.Metric == "" || (requirePrice && rc.Price == "")
	if missing {
		return ResolvedColumns{}, fmt.Errorf(
			"could not resolve required columns: resolved date=%q price=%q metric=%q (require_price=%v), columns seen: %v",
			rc.Date, rc.Price, rc.Metric, requirePrice, columns,
		)
	}

	return rc, nil
}

// pickColumn returns the original name of the first candidate present in
// the lowercased header map, or "" when none match.
func pickColumn(lower map[string]string, candidates []string) string {
	for _, c := range candidates {
		if orig, ok := lower[c]; ok {
			return orig
		}
	}
	return ""
}
