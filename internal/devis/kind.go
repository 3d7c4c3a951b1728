// Package devis builds the administrative directory of quote requests
// ("demandes de devis") spread over the six product-category collections.
package devis

import "strings"

// Kind identifies the product category, and therefore the collection, a
// quote request lives in.
type Kind string

const (
	KindCompression Kind = "compression"
	KindTraction    Kind = "traction"
	KindTorsion     Kind = "torsion"
	KindFilDresse   Kind = "fil"
	KindGrille      Kind = "grille"
	KindAutre       Kind = "autre"
)

// TypeAll is the type filter sentinel meaning "every kind".
const TypeAll = "all"

// Kinds lists every kind in the fixed order used to merge sources.
var Kinds = []Kind{
	KindCompression,
	KindTraction,
	KindTorsion,
	KindFilDresse,
	KindGrille,
	KindAutre,
}

// ParseKind maps a tag to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// Valid reports whether k is one of the six categories.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }
