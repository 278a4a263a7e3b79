package ingestion

import "strings"

// CleanCSVText normalizes a raw BMP response body into real CSV text.
//
// BMP sometimes returns the CSV double-encoded: the whole payload wrapped
// in one pair of quotes with literal `\n` / `\r` sequences instead of
// line breaks. This undoes exactly that shape:
//
//   - trims surrounding whitespace (empty input stays empty)
//   - strips a single matching outer pair of double or single quotes
//     spanning the entire text
//   - rewrites every literal two-character `\n` into a newline and `\r`
//     into a carriage return
//   - trims again
//
// It is a best-effort heuristic, not a JSON string decoder: `\"`, `\\`
// and unicode escapes pass through untouched.
func CleanCSVText(raw string) string {
	txt := strings.TrimSpace(raw)
	if txt == "" {
		return ""
	}

	if len(txt) >= 2 {
		first, last := txt[0], txt[len(txt)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			txt = txt[1 : len(txt)-1]
		}
	}

	txt = strings.ReplaceAll(txt, `\n`, "\n")
	txt = strings.ReplaceAll(txt, `\r`, "\r")

	return strings.TrimSpace(txt)
}
