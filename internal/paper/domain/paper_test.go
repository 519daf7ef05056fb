package domain

import "testing"

func TestStripVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2101.00001v2", "2101.00001"},
		{"2101.00001v10", "2101.00001"},
		{"2101.00001", "2101.00001"},
		{"cs/9901001v1", "cs/9901001"},
		{"cs/9901001", "cs/9901001"},
		{"v1", "v1"},
		{"2101.00001v", "2101.00001v"},
		{"2101.00001vx", "2101.00001vx"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := StripVersion(tc.in); got != tc.want {
			t.Errorf("StripVersion(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseSortModeDefaultsToNewest(t *testing.T) {
	cases := map[string]SortMode{
		"newest":      SortNewest,
		"lastUpdated": SortLastUpdated,
		"relevance":   SortRelevance,
		"":            SortNewest,
		"bogus":       SortNewest,
	}

	for in, want := range cases {
		if got := ParseSortMode(in); got != want {
			t.Errorf("ParseSortMode(%q) = %q, want %q", in, got, want)
		}
	}
}
