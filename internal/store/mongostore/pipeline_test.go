package mongostore

import (
	"regexp"
	"testing"
	"time"

	"github.com/mrs-ressorts/portail/internal/devis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func stageNames(t *testing.T, p []bson.D) []string {
	t.Helper()
	names := make([]string, 0, len(p))
	for _, st := range p {
		require.Len(t, st, 1)
		names = append(names, st[0].Key)
	}
	return names
}

func TestPipeline_NoSearch(t *testing.T) {
	p := Pipeline("users", "")
	assert.Equal(t, []string{"$lookup", "$unwind", "$sort", "$project"}, stageNames(t, p))

	lookup := p[0][0].Value.(bson.D)
	assert.Contains(t, lookup, bson.E{Key: "from", Value: "users"})
	assert.Contains(t, lookup, bson.E{Key: "localField", Value: "user"})

	unwind := p[1][0].Value.(bson.D)
	assert.Contains(t, unwind, bson.E{Key: "preserveNullAndEmptyArrays", Value: true})
}

func TestPipeline_SearchIsEscaped(t *testing.T) {
	p := Pipeline("comptes", "a.*b (x)")
	assert.Equal(t, []string{"$lookup", "$unwind", "$sort", "$project", "$match"}, stageNames(t, p))
	assert.Contains(t, p[0][0].Value.(bson.D), bson.E{Key: "from", Value: "comptes"})

	match := p[4][0].Value.(bson.D)
	require.Equal(t, "$or", match[0].Key)
	or := match[0].Value.(bson.A)
	require.Len(t, or, len(searchPaths))
	for i, clause := range or {
		d := clause.(bson.D)
		assert.Equal(t, searchPaths[i], d[0].Key)
		assert.Equal(t, bson.Regex{Pattern: `[Aa]\.\*[Bb] \([Xx]\)`, Options: "i"}, d[0].Value)
	}
}

func TestSearchPattern_CoversFoldingOrbits(t *testing.T) {
	assert.Equal(t, "[Kk\u212a]", SearchPattern("k"))
	assert.Equal(t, "[Ss\u017f][Ss\u017f]", SearchPattern("ss"))
	assert.Equal(t, "[\u00c9\u00e9][Ll][Oo]", SearchPattern("\u00c9LO"))
	assert.Equal(t, `42\+1`, SearchPattern("42+1"))

	re := regexp.MustCompile(SearchPattern("karim"))
	assert.True(t, re.MatchString("\u212aarim"), "Kelvin sign folds to k")
	assert.False(t, regexp.MustCompile(SearchPattern("ss")).MatchString("Stra\u00dfe"), "no multi-rune folding")
}

func TestDemandeDoc_Candidate(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	d := demandeDoc{
		ID:                "6650c0ffee",
		Numero:            "CP-12",
		NestedDevisNumero: "DV-3",
		Client:            personDoc{Prenom: "Ali", Email: "ali@x.tn"},
		Legacy:            personDoc{Nom: "Legacy"},
		HasDemandePdf:     true,
		Attachments:       2,
		CreatedAt:         &created,
	}
	c := d.candidate()
	assert.Equal(t, "6650c0ffee", c.ID)
	assert.Equal(t, devis.Person{Prenom: "Ali", Email: "ali@x.tn"}, c.Client)
	assert.Equal(t, devis.Person{Nom: "Legacy"}, c.Legacy)
	assert.Nil(t, c.User, "an unresolved lookup projects to an empty user")
	assert.True(t, c.HasDemandePdf)
	assert.Equal(t, 2, c.Attachments)
	assert.Equal(t, &created, c.CreatedAt)

	d.User = personDoc{Email: "u@x.tn"}
	c = d.candidate()
	require.NotNil(t, c.User)
	assert.Equal(t, "u@x.tn", c.User.Email)
}

func TestDemandeDoc_DecodesProjectedShape(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "id", Value: "abc"},
		{Key: "numero", Value: "N-1"},
		{Key: "devisNumero", Value: ""},
		{Key: "nestedDevisNumero", Value: ""},
		{Key: "client", Value: bson.D{{Key: "firstName", Value: "Jane"}}},
		{Key: "legacy", Value: bson.D{}},
		{Key: "user", Value: bson.D{}},
		{Key: "hasDemandePdf", Value: false},
		{Key: "attachments", Value: int32(0)},
	})
	require.NoError(t, err)
	var d demandeDoc
	require.NoError(t, bson.Unmarshal(raw, &d))
	c := d.candidate()
	assert.Equal(t, "Jane", c.Client.FirstName)
	assert.Nil(t, c.CreatedAt)
	assert.Nil(t, c.User)
}

func TestDefaultCollections_CoverEveryKind(t *testing.T) {
	assert.Len(t, DefaultCollections, len(devis.Kinds))
	for _, k := range devis.Kinds {
		assert.NotEmpty(t, DefaultCollections[k], "kind %s has no default collection", k)
	}
}
