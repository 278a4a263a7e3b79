package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table is the row/column form of a parsed CSV payload.
//
// Columns keeps the header order as returned by the API (case and
// spelling uncontrolled); Rows map each original column name to the raw
// cell text. No schema is assumed beyond "has a header row"; column
// semantics are resolved later by ResolveColumns.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// snippetLen bounds how much offending text an error carries.
const snippetLen = 200

// ParseTable parses normalized CSV text into a Table.
//
// It tolerates:
//   - quoted cells with lazy quoting (upstream quoting is sloppy)
//   - rows with fewer or more fields than the header (short rows are
//     padded with empty cells, long rows truncated to the header width)
//
// It fails on:
//   - unreadable header
//   - zero data rows after the header; the error carries the first 200
//     characters of the text for diagnosis.
func ParseTable(text string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header (first %d chars: %q): %w", snippetLen, snippet(text), err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := &Table{Columns: cols}
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+2, err)
		}

		row := make(map[string]string, len(cols))
		for i, name := range cols {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("parsed zero data rows from CSV (first %d chars: %q)", snippetLen, snippet(text))
	}

	return t, nil
}

// snippet truncates to snippetLen characters, never splitting a rune.
func snippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	return string([]rune(s)[:snippetLen])
}
