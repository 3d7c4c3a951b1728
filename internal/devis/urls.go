package devis

import (
	"net/url"
	"strings"
)

// DefaultURLBase is where the PDF download routes are mounted.
const DefaultURLBase = "/api/admin/devis"

// URLBuilder derives the download links of a directory item. Both links are
// pure functions of already resolved fields.
type URLBuilder struct {
	Base string
}

func (b URLBuilder) base() string {
	if b.Base == "" {
		return DefaultURLBase
	}
	return strings.TrimRight(b.Base, "/")
}

// DemandePdf is the request-confirmation PDF link of a record.
func (b URLBuilder) DemandePdf(kind Kind, id string) string {
	return b.base() + "/" + url.PathEscape(string(kind)) + "/" + url.PathEscape(id) + "/pdf"
}

// DevisPdf is the formal quote PDF link for a quote number.
func (b URLBuilder) DevisPdf(numero string) string {
	return b.base() + "/numero/" + url.PathEscape(numero) + "/pdf"
}

// Decorate fills the two optional links of it.
func (b URLBuilder) Decorate(it *Item) {
	if it.HasDemandePdf {
		u := b.DemandePdf(it.Type, it.ID)
		it.DemandePdfURL = &u
	}
	if it.DevisNumero != nil {
		u := b.DevisPdf(*it.DevisNumero)
		it.DevisPdfURL = &u
	}
}
