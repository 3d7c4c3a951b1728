package devis

import (
	"math"
	"net/url"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want Query
	}{
		{"", Query{Page: 1, Limit: 20, Type: TypeAll}},
		{"page=3&limit=50&type=torsion&q=+ali+", Query{Page: 3, Limit: 50, Type: "torsion", Q: "ali"}},
		{"page=0&limit=0", Query{Page: 1, Limit: 20, Type: TypeAll}},
		{"page=-4&limit=-2", Query{Page: 1, Limit: 1, Type: TypeAll}},
		{"limit=1000", Query{Page: 1, Limit: 100, Type: TypeAll}},
		{"page=abc&limit=xyz", Query{Page: 1, Limit: 20, Type: TypeAll}},
		{"type=Fil", Query{Page: 1, Limit: 20, Type: "fil"}},
		{"type=ressort", Query{Page: 1, Limit: 20, Type: "ressort"}},
		{"type=+GRILLE+", Query{Page: 1, Limit: 20, Type: "grille"}},
		{"page=4611686018427387905&limit=4", Query{Page: 4611686018427387905, Limit: 4, Type: TypeAll}},
		{"type=all&q=%20%20", Query{Page: 1, Limit: 20, Type: TypeAll}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := url.ParseQuery(tt.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := ParseQuery(v); got != tt.want {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestQueryKindsAndOffset(t *testing.T) {
	if got := (Query{Type: TypeAll}).Kinds(); len(got) != 6 {
		t.Fatalf("expected 6 kinds, got %v", got)
	}
	if got := (Query{Type: "grille"}).Kinds(); len(got) != 1 || got[0] != KindGrille {
		t.Fatalf("expected [grille], got %v", got)
	}
	if got := (Query{Type: "ressort"}).Kinds(); len(got) != 0 {
		t.Fatalf("expected no kinds for an unknown type, got %v", got)
	}
	if got := (Query{Page: 3, Limit: 7}).Offset(); got != 14 {
		t.Fatalf("Offset() = %d, want 14", got)
	}
	if got := (Query{Page: math.MaxInt/4 + 2, Limit: 4}).Offset(); got != math.MaxInt {
		t.Fatalf("overflowing Offset() = %d, want math.MaxInt", got)
	}
}

func TestMatcherNilMatchesAll(t *testing.T) {
	var m *Matcher
	if !m.Match(Candidate{}) {
		t.Fatal("nil matcher must match")
	}
	if NewMatcher("   ") != nil {
		t.Fatal("blank query must yield nil matcher")
	}
}
