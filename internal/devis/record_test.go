package devis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_NamePrecedence(t *testing.T) {
	user := &Person{Prenom: "Sara", Nom: "Haddad", Email: "sara@example.com", NumTel: "0600"}

	tests := []struct {
		name     string
		c        Candidate
		wantName string
		wantInfo ClientInfo
	}{
		{
			name:     "embedded client wins over user",
			c:        Candidate{Client: Person{Prenom: "Ali", Nom: "Ben", Email: "ali@x.tn"}, User: user},
			wantName: "Ali Ben",
			wantInfo: ClientInfo{Prenom: "Ali", Nom: "Ben", Email: "ali@x.tn", NumTel: "0600"},
		},
		{
			name:     "english field names",
			c:        Candidate{Client: Person{FirstName: "John", LastName: "Doe"}},
			wantName: "John Doe",
			wantInfo: ClientInfo{Prenom: "John", Nom: "Doe"},
		},
		{
			name:     "legacy flat fields before user",
			c:        Candidate{Legacy: Person{Prenom: "Omar", Nom: "K", NumTel: "22"}, User: user},
			wantName: "Omar K",
			wantInfo: ClientInfo{Prenom: "Omar", Nom: "K", Email: "sara@example.com", NumTel: "22"},
		},
		{
			name:     "blank embedded falls through to user",
			c:        Candidate{Client: Person{Prenom: " ", Nom: ""}, User: user},
			wantName: "Sara Haddad",
			wantInfo: ClientInfo{Prenom: "Sara", Nom: "Haddad", Email: "sara@example.com", NumTel: "0600"},
		},
		{
			name:     "tier chosen as a whole",
			c:        Candidate{Client: Person{Prenom: "Ali"}, User: user},
			wantName: "Ali",
			wantInfo: ClientInfo{Prenom: "Ali", Email: "sara@example.com", NumTel: "0600"},
		},
		{
			name:     "last name only",
			c:        Candidate{Legacy: Person{Nom: "Trabelsi"}},
			wantName: "Trabelsi",
			wantInfo: ClientInfo{Nom: "Trabelsi"},
		},
		{
			name:     "nothing resolved",
			c:        Candidate{},
			wantName: "",
			wantInfo: ClientInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := Normalize(KindAutre, tt.c)
			assert.Equal(t, tt.wantName, it.Client)
			assert.Equal(t, tt.wantInfo, it.ClientInfo)
		})
	}
}

func TestNormalize_Fields(t *testing.T) {
	c := Candidate{
		ID:                "665f",
		Numero:            "TR-9",
		NestedDevisNumero: "DV-9",
		HasDemandePdf:     true,
		Attachments:       3,
		CreatedAt:         at(0),
	}
	it := Normalize(KindTraction, c)
	assert.Equal(t, "665f", it.ID)
	assert.Equal(t, KindTraction, it.Type)
	if assert.NotNil(t, it.DevisNumero) {
		assert.Equal(t, "DV-9", *it.DevisNumero)
	}
	assert.True(t, it.HasDemandePdf)
	assert.Equal(t, 3, it.Attachments)
	assert.Equal(t, at(0), it.Date)
	assert.Nil(t, it.DemandePdfURL)

	c.DevisNumero = "DV-TOP"
	assert.Equal(t, "DV-TOP", *Normalize(KindTraction, c).DevisNumero)

	c.Attachments = -1
	assert.Zero(t, Normalize(KindTraction, c).Attachments)
}
