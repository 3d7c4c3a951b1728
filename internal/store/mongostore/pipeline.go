package mongostore

import (
	"regexp"
	"strings"
	"time"

	"github.com/mrs-ressorts/portail/internal/devis"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Projected field names. The pipeline reduces every collection to this shape
// so decoding never depends on per-collection schema drift.
const (
	fieldID          = "id"
	fieldNumero      = "numero"
	fieldDevisNumero = "devisNumero"
	fieldNested      = "nestedDevisNumero"
	fieldClient      = "client"
	fieldLegacy      = "legacy"
	fieldUser        = "user"
	fieldHasPdf      = "hasDemandePdf"
	fieldAttachments = "attachments"
	fieldCreatedAt   = "createdAt"

	lookupAs = "userDoc"
)

// searchPaths are the projected paths the pushed-down regex runs over.
var searchPaths = []string{
	fieldNumero,
	fieldDevisNumero,
	fieldNested,
	fieldClient + ".prenom",
	fieldClient + ".firstName",
	fieldClient + ".nom",
	fieldClient + ".lastName",
	fieldLegacy + ".prenom",
	fieldLegacy + ".nom",
	fieldUser + ".prenom",
	fieldUser + ".firstName",
	fieldUser + ".nom",
	fieldUser + ".lastName",
	fieldUser + ".email",
}

// Pipeline builds the aggregation run against one quote-request collection:
// left-outer user lookup, stable order, projection to the directory shape and,
// when search is set, an escaped case-insensitive regex match.
func Pipeline(usersCollection, search string) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: lookupAs},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + lookupAs},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: projection()}},
	}
	if search != "" {
		p = append(p, bson.D{{Key: "$match", Value: SearchFilter(search)}})
	}
	return p
}

// SearchFilter ORs a literal, case-insensitive regex over searchPaths.
func SearchFilter(search string) bson.D {
	re := bson.Regex{Pattern: SearchPattern(search), Options: "i"}
	or := make(bson.A, 0, len(searchPaths))
	for _, path := range searchPaths {
		or = append(or, bson.D{{Key: path, Value: re}})
	}
	return bson.D{{Key: "$or", Value: or}}
}

// SearchPattern quotes search and spells every cased rune as the class of
// its whole folding orbit ("k" becomes "[Kk\u212a]"), so the server never
// rejects a row the in-memory matcher accepts.
func SearchPattern(search string) string {
	var b strings.Builder
	for _, r := range search {
		orbit := devis.FoldOrbit(r)
		if len(orbit) == 1 {
			b.WriteString(regexp.QuoteMeta(string(r)))
			continue
		}
		b.WriteByte('[')
		for _, o := range orbit {
			b.WriteRune(o)
		}
		b.WriteByte(']')
	}
	return b.String()
}

func projection() bson.D {
	return bson.D{
		{Key: "_id", Value: 0},
		{Key: fieldID, Value: bson.D{{Key: "$toString", Value: "$_id"}}},
		{Key: fieldNumero, Value: stringOrEmpty("$numero")},
		{Key: fieldDevisNumero, Value: stringOrEmpty("$devisNumero")},
		{Key: fieldNested, Value: stringOrEmpty("$devis.numero")},
		{Key: fieldClient, Value: person("$client.")},
		{Key: fieldLegacy, Value: person("$")},
		{Key: fieldUser, Value: person("$" + lookupAs + ".")},
		{Key: fieldHasPdf, Value: bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "$ne", Value: bson.A{bson.D{{Key: "$type", Value: "$demandePdf"}}, "missing"}}},
			bson.D{{Key: "$ne", Value: bson.A{"$demandePdf", nil}}},
		}}}},
		{Key: fieldAttachments, Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$isArray", Value: "$documents"}},
			bson.D{{Key: "$size", Value: "$documents"}},
			0,
		}}}},
		{Key: fieldCreatedAt, Value: 1},
	}
}

// person projects the name and contact fields found under prefix. Phone
// numbers were stored as numbers by older forms.
func person(prefix string) bson.D {
	return bson.D{
		{Key: "prenom", Value: prefix + "prenom"},
		{Key: "firstName", Value: prefix + "firstName"},
		{Key: "nom", Value: prefix + "nom"},
		{Key: "lastName", Value: prefix + "lastName"},
		{Key: "email", Value: prefix + "email"},
		{Key: "numTel", Value: bson.D{{Key: "$toString", Value: prefix + "numTel"}}},
	}
}

func stringOrEmpty(path string) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{bson.D{{Key: "$toString", Value: path}}, ""}}}
}

type personDoc struct {
	Prenom    string `bson:"prenom,omitempty"`
	FirstName string `bson:"firstName,omitempty"`
	Nom       string `bson:"nom,omitempty"`
	LastName  string `bson:"lastName,omitempty"`
	Email     string `bson:"email,omitempty"`
	NumTel    string `bson:"numTel,omitempty"`
}

func (p personDoc) toPerson() devis.Person {
	return devis.Person(p)
}

func (p personDoc) empty() bool {
	return p == personDoc{}
}

// demandeDoc is the projected shape decoded from the pipeline.
type demandeDoc struct {
	ID                string     `bson:"id"`
	Numero            string     `bson:"numero"`
	DevisNumero       string     `bson:"devisNumero"`
	NestedDevisNumero string     `bson:"nestedDevisNumero"`
	Client            personDoc  `bson:"client"`
	Legacy            personDoc  `bson:"legacy"`
	User              personDoc  `bson:"user"`
	HasDemandePdf     bool       `bson:"hasDemandePdf"`
	Attachments       int        `bson:"attachments"`
	CreatedAt         *time.Time `bson:"createdAt,omitempty"`
}

func (d demandeDoc) candidate() devis.Candidate {
	c := devis.Candidate{
		ID:                d.ID,
		Numero:            d.Numero,
		DevisNumero:       d.DevisNumero,
		NestedDevisNumero: d.NestedDevisNumero,
		Client:            d.Client.toPerson(),
		Legacy:            d.Legacy.toPerson(),
		HasDemandePdf:     d.HasDemandePdf,
		Attachments:       d.Attachments,
		CreatedAt:         d.CreatedAt,
	}
	if !d.User.empty() {
		u := d.User.toPerson()
		c.User = &u
	}
	return c
}
