package wildcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		expected  bool
	}{
		{"suffix wildcard", "*.c", "symbols.c", true},
		{"prefix wildcard", "sym*", "symbols.c", true},
		{"wrong suffix", "*.h", "symbols.c", false},
		{"case insensitive", "SYM*", "symbols.c", true},
		{"case insensitive candidate", "symbols.c", "SYMBOLS.C", true},
		{"multiple wildcards", "a*b*c", "aXbYc", true},
		{"multiple wildcards reject", "a*b*c", "aXbYd", false},
		{"exact", "main", "main", true},
		{"exact shorter candidate", "main", "mai", false},
		{"exact longer candidate", "main", "mainly", false},
		{"lone wildcard", "*", "anything", true},
		{"lone wildcard empty", "*", "", true},
		{"empty both", "", "", true},
		{"empty query", "", "x", false},
		{"double wildcard", "**x", "abx", true},
		{"wildcard in middle", "Dbg*Symbol", "DbgFindTypeSymbol", true},
		{"backtracking", "*ab", "aab", true},
		{"backtracking repeated", "*aab", "aaab", true},
		{"trailing literal after wildcard unmet", "a*z", "abc", false},
		{"candidate star is literal", "a\\*", "a*", false},
		{"star in candidate matches star query", "a*", "a*", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Match(tc.query, tc.candidate))
		})
	}
}

func FuzzMatch(f *testing.F) {
	f.Add("*.c", "symbols.c")
	f.Add("a*b*c", "aXbYc")
	f.Add("", "")
	f.Add("***", "x")
	f.Fuzz(func(t *testing.T, query, candidate string) {
		got := Match(query, candidate)
		if query == candidate && !got {
			t.Fatalf("%q does not match itself", query)
		}
	})
}
