// Package wildcard implements the case-insensitive glob matching used by
// every name-based symbol search. Only '*' is special: it matches zero or
// more arbitrary characters. There is no escape syntax.
package wildcard

// Match reports whether candidate matches query.
func Match(query, candidate string) bool {
	q, c := 0, 0
	inWildcard := false
	for {
		if q < len(query) && query[q] == '*' {
			inWildcard = true
			q++
		}

		if q == len(query) {
			return c == len(candidate) || inWildcard
		}

		// The query still has literal characters to satisfy.
		if c == len(candidate) {
			return false
		}

		if lower(query[q]) == lower(candidate[c]) {
			if !inWildcard {
				q++
				c++
				continue
			}
			// The match may start here or further along the candidate.
			if Match(query[q:], candidate[c:]) {
				return true
			}
			c++
			continue
		}

		if !inWildcard {
			return false
		}
		c++
	}
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
