package devis

import (
	"slices"
	"strings"
	"unicode"
)

// Matcher is a case-insensitive literal substring search. The needle is
// never interpreted as a pattern. Case is compared with simple Unicode
// folding, one rune against one rune, as strings.EqualFold does: "ß" does
// not match "ss".
type Matcher struct {
	needle string
}

// NewMatcher returns nil for a blank query, meaning "match everything".
func NewMatcher(q string) *Matcher {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	return &Matcher{needle: Fold(q)}
}

// Match reports whether any searchable field of c contains the needle.
// A nil matcher matches every candidate.
func (m *Matcher) Match(c Candidate) bool {
	if m == nil {
		return true
	}
	for _, f := range c.SearchFields() {
		if f != "" && strings.Contains(Fold(f), m.needle) {
			return true
		}
	}
	return false
}

// SearchFields lists the values the free-text search runs over: request
// number, quote numbers, client names (structured and legacy) and the
// referenced user's names and email.
func (c Candidate) SearchFields() []string {
	fields := []string{
		c.Numero,
		c.DevisNumero,
		c.NestedDevisNumero,
		c.Client.Prenom,
		c.Client.FirstName,
		c.Client.Nom,
		c.Client.LastName,
		c.Legacy.Prenom,
		c.Legacy.Nom,
	}
	if u := c.User; u != nil {
		fields = append(fields, u.Prenom, u.FirstName, u.Nom, u.LastName, u.Email)
	}
	return fields
}

// Fold maps every rune to the smallest rune of its simple case-folding
// orbit, so two strings fold equal exactly when strings.EqualFold holds.
func Fold(s string) string {
	return strings.Map(foldRune, s)
}

func foldRune(r rune) rune {
	least := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < least {
			least = f
		}
	}
	return least
}

// FoldOrbit returns every rune that folds equal to r, r included, in
// ascending order. Stores use it to widen a pushed-down search.
func FoldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	slices.Sort(orbit)
	return orbit
}
