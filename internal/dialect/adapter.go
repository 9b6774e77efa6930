package dialect

import (
	"strconv"
	"strings"
)

// Adapter rewrites canonical SQL for one engine. The dialect and catalog are
// fixed at construction; nothing is read from the environment at rewrite
// time, so both dialects can be exercised side by side in one process.
type Adapter struct {
	Dialect Dialect
	Catalog *Catalog
}

func NewAdapter(d Dialect, c *Catalog) Adapter {
	return Adapter{Dialect: d, Catalog: c}
}

// Rewrite translates canonical SQL into the active dialect's literal text.
//
// For SQLite the canonical text is already valid: identifiers match without
// quoting and ? is the native placeholder, so the input is returned unchanged.
//
// For PostgreSQL a single scanner pass:
//   - double-quotes every cataloged identifier appearing as a standalone
//     word outside string literals,
//   - leaves text inside single-quoted literals untouched (including ''
//     escapes), so a donor named "Event Corp" never gets its Event quoted,
//   - leaves already-double-quoted identifiers as written,
//   - rewrites ? placeholders to $1..$n in order.
//
// Identifiers missing from the catalog pass through bare; PostgreSQL will
// case-fold them, which may surface later as a query failure.
func (a Adapter) Rewrite(canonical string) string {
	if a.Dialect != Postgres {
		return canonical
	}

	var b strings.Builder
	b.Grow(len(canonical) + 32)

	s := canonical
	arg := 0
	for i := 0; i < len(s); {
		ch := s[i]

		switch {
		case ch == '\'':
			// String literal: copy through, honoring '' escapes.
			j := i + 1
			for j < len(s) {
				if s[j] == '\'' {
					if j+1 < len(s) && s[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			b.WriteString(s[i:j])
			i = j

		case ch == '"':
			// Quoted identifier: already dialect-literal, copy verbatim.
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			if j < len(s) {
				j++
			}
			b.WriteString(s[i:j])
			i = j

		case ch == '?':
			arg++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(arg))
			i++

		case isIdentStart(ch):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			word := s[i:j]
			if _, known := a.Catalog.Kind(word); known {
				b.WriteByte('"')
				b.WriteString(word)
				b.WriteByte('"')
			} else {
				b.WriteString(word)
			}
			i = j

		default:
			b.WriteByte(ch)
			i++
		}
	}

	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
