package devis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_SimpleFolding(t *testing.T) {
	tests := []struct {
		q, field string
		want     bool
	}{
		{"karim", "KARIM", true},
		{"karim", "Karim", true},
		{"rosa", "Ro\u017fa", true},
		{"élo", "ÉLODIE", true},
		{"ss", "Straße", false},
		{"straße", "STRASSE", false},
		{"straße", "Straße", true},
		{"a.*b", "xa.*by", true},
		{"a.*b", "ab", false},
	}
	for _, tc := range tests {
		m := NewMatcher(tc.q)
		got := m.Match(Candidate{Numero: tc.field})
		assert.Equal(t, tc.want, got, "q=%q field=%q", tc.q, tc.field)
		assert.Equal(t, strings.EqualFold(tc.q, tc.field), Fold(tc.q) == Fold(tc.field), "q=%q field=%q", tc.q, tc.field)
	}
}

func TestFoldOrbit(t *testing.T) {
	assert.Equal(t, []rune{'K', 'k', '\u212a'}, FoldOrbit('k'))
	assert.Equal(t, []rune{'K', 'k', '\u212a'}, FoldOrbit('K'))
	assert.Equal(t, []rune{'S', 's', '\u017f'}, FoldOrbit('S'))
	assert.Equal(t, []rune{'4'}, FoldOrbit('4'))
	assert.Equal(t, Fold("KARIM"), Fold("Karim"))
}
