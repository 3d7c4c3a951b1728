package devis

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query is the input of a directory listing.
type Query struct {
	Page  int
	Limit int
	// Type is a Kind tag or TypeAll.
	Type string
	Q    string
}

// ParseQuery reads page, limit, type and q from URL values. Malformed
// values fall back to defaults; the result is normalised.
func ParseQuery(v url.Values) Query {
	q := Query{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Type:  v.Get("type"),
		Q:     v.Get("q"),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("page"))); err == nil {
		q.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("limit"))); err == nil {
		q.Limit = n
	}
	return q.Normalize()
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit], lower-cases the
// type and trims the search text. A zero limit means default, a blank type
// means TypeAll. An unknown type is kept as is and matches nothing.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit == 0:
		q.Limit = DefaultLimit
	case q.Limit < 1:
		q.Limit = 1
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	if q.Type == "" {
		q.Type = TypeAll
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

// Kinds returns the kinds a normalised query reads from, none for an
// unknown type.
func (q Query) Kinds() []Kind {
	if q.Type == TypeAll {
		return Kinds
	}
	if k, ok := ParseKind(q.Type); ok {
		return []Kind{k}
	}
	return nil
}

// Offset is the index of the first item of the requested page. It is
// math.MaxInt when the product does not fit in an int.
func (q Query) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > (math.MaxInt-q.Limit)/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}
