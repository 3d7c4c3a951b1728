package devis

import (
	"strings"
	"time"
)

// Person carries the name and contact fields a quote request can hold for
// its author. Both the French and English field spellings exist in stored
// data, the French one wins when both are set.
type Person struct {
	Prenom    string
	FirstName string
	Nom       string
	LastName  string
	Email     string
	NumTel    string
}

func (p Person) first() string { return firstNonBlank(p.Prenom, p.FirstName) }
func (p Person) last() string  { return firstNonBlank(p.Nom, p.LastName) }

func (p Person) named() bool { return p.first() != "" || p.last() != "" }

// Candidate is one raw quote request as read from a store, before
// normalisation. Stores fill it from their own schema; nothing downstream
// knows about per-collection differences.
type Candidate struct {
	ID                string
	Numero            string
	DevisNumero       string
	NestedDevisNumero string

	// Client is the embedded structured client sub-document.
	Client Person
	// Legacy holds the flat top-level prenom/nom/email/numTel fields.
	Legacy Person
	// User is the referenced user, nil when there is none or it did not resolve.
	User *Person

	HasDemandePdf bool
	Attachments   int
	CreatedAt     *time.Time
}

// ClientInfo is the structured contact block of a directory item.
type ClientInfo struct {
	Prenom string `json:"prenom"`
	Nom    string `json:"nom"`
	Email  string `json:"email"`
	NumTel string `json:"numTel"`
}

// Item is one normalised row of the directory.
type Item struct {
	ID            string     `json:"_id"`
	Numero        string     `json:"numero"`
	Type          Kind       `json:"type"`
	DevisNumero   *string    `json:"devisNumero"`
	Client        string     `json:"client"`
	ClientInfo    ClientInfo `json:"clientInfo"`
	Date          *time.Time `json:"date"`
	HasDemandePdf bool       `json:"hasDemandePdf"`
	DemandePdfURL *string    `json:"demandePdfUrl"`
	DevisPdfURL   *string    `json:"devisPdfUrl"`
	Attachments   int        `json:"attachments"`
}

// Normalize turns a candidate of the given kind into a directory item.
//
// The author is resolved through a fixed chain: embedded client, then the
// legacy flat fields, then the referenced user. The first tier carrying a
// first or last name provides both name parts. Email and phone take the
// first non-blank value along the same chain.
func Normalize(kind Kind, c Candidate) Item {
	tiers := []Person{c.Client, c.Legacy}
	if c.User != nil {
		tiers = append(tiers, *c.User)
	}

	var named Person
	for _, t := range tiers {
		if t.named() {
			named = t
			break
		}
	}
	info := ClientInfo{
		Prenom: named.first(),
		Nom:    named.last(),
	}
	for _, t := range tiers {
		if info.Email == "" {
			info.Email = strings.TrimSpace(t.Email)
		}
		if info.NumTel == "" {
			info.NumTel = strings.TrimSpace(t.NumTel)
		}
	}

	item := Item{
		ID:            c.ID,
		Numero:        c.Numero,
		Type:          kind,
		Client:        strings.TrimSpace(info.Prenom + " " + info.Nom),
		ClientInfo:    info,
		Date:          c.CreatedAt,
		HasDemandePdf: c.HasDemandePdf,
		Attachments:   max(c.Attachments, 0),
	}
	if n := firstNonBlank(c.DevisNumero, c.NestedDevisNumero); n != "" {
		item.DevisNumero = &n
	}
	return item
}

// sortTime is the creation date used for ordering, the epoch when unknown.
func (it Item) sortTime() time.Time {
	if it.Date == nil {
		return time.Unix(0, 0).UTC()
	}
	return *it.Date
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
