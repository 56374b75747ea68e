package repository

import "testing"

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "ada", "%ada%"},
		{"percent", "50%", `%50\%%`},
		{"underscore", "a_b", `%a\_b%`},
		{"backslash", `a\b`, `%a\\b%`},
		{"digits", "6365", "%6365%"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := containsPattern(tc.input); got != tc.want {
				t.Fatalf("containsPattern(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
