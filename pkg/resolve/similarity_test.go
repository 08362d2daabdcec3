package resolve

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "smith", "smith", 1.0},
		{"both_empty", "", "", 1.0},
		{"one_empty", "smith", "", 0.0},
		{"one_substitution", "smith", "smyth", 0.8},
		{"disjoint", "smith", "jones", 0.0},
		{"suffix_insertions", "smith", "smithson", 0.625},
		{"case_sensitive", "Smith", "smith", 0.8},
		{"accented_rune", "café", "cafe", 0.75},
		{"space_vs_hyphen", "coca-cola", "coca cola", 1.0 - 1.0/9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Similarity(tc.a, tc.b)
			if !approx(got, tc.expected) {
				t.Errorf("Similarity(%q, %q): got %v, want %v", tc.a, tc.b, got, tc.expected)
			}
			if back := Similarity(tc.b, tc.a); !approx(got, back) {
				t.Errorf("Similarity is not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b     string
		expected int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"smith", "smith", 0},
	}

	for _, tc := range cases {
		got := levenshtein([]rune(tc.a), []rune(tc.b))
		if got != tc.expected {
			t.Errorf("levenshtein(%q, %q): got %d, want %d", tc.a, tc.b, got, tc.expected)
		}
	}
}
