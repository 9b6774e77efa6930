// Package schema derives storage schemas from raw CSV inputs: it cleans
// header text into safe identifiers and infers a column type from sample
// values.
//
// Cleaning and inference are both pure and bounded; neither touches the
// database. Callers validate the derived schema (non-empty, no duplicate
// identifiers) before any DDL is issued.
package schema

import "strings"

// Clean normalizes raw header text into an identifier safe for table and
// column names.
//
// Rules:
//   - surrounding whitespace is trimmed
//   - space ( ) / - . , ' each become an underscore
//   - any other non-alphanumeric rune is dropped
//   - runs of underscores collapse to one
//   - leading/trailing underscores are stripped
//
// Clean is idempotent. It never fails; input that normalizes to the empty
// string returns "", which callers must treat as a fatal schema error before
// creating a table.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		switch r {
		case ' ', '(', ')', '/', '-', '.', ',', '\'':
			r = '_'
		}

		if r == '_' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}

		if isAlnum(r) {
			b.WriteRune(r)
			lastUnderscore = false
		}
		// Drop everything else.
	}

	return strings.Trim(b.String(), "_")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
