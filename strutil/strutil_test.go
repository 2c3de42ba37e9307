package strutil

import "testing"

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"cliff diving", "CLIFF DIVING", 11},
	}
	for _, c := range cases {
		if got := Levenshtein(c.a, c.b); got != c.want {
			t.Errorf("Levenshtein(%q, %q) = %d, expected %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLevenshteinUnicode(t *testing.T) {
	// Runes, not bytes: one accented substitution is one edit.
	if got := Levenshtein("café", "cafe"); got != 1 {
		t.Fatalf("expected distance 1, got %d", got)
	}
}

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Clean and Jerk", "clean and jerk"},
		{"Café", "cafe"},
		{"pétanque", "petanque"},
		{"already lower", "already lower"},
	}
	for _, c := range cases {
		if got := NormalizeLabel(c.in); got != c.want {
			t.Errorf("NormalizeLabel(%q) = %q, expected %q", c.in, got, c.want)
		}
	}
}

func TestNormalizedLabelsMatch(t *testing.T) {
	if NormalizeLabel("Pétanque") != NormalizeLabel("petanque") {
		t.Fatal("expected accented and plain variants to normalize equal")
	}
}
