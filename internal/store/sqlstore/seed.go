package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/mrs-ressorts/portail/internal/devis"
	"gorm.io/gorm"
)

// Seed inserts a small demo data set for development. Running it twice
// leaves the tables unchanged.
func (s *Store) Seed(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	admin := User{Prenom: "Admin", Nom: "MRS", Email: "admin@mrs-ressorts.local", Role: "admin"}
	client := User{Prenom: "Sara", Nom: "Benali", Email: "sara@example.com", NumTel: "0600000000", Role: "client"}
	for _, u := range []*User{&admin, &client} {
		err := db.Where("email = ?", u.Email).First(u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = db.Create(u).Error
		}
		if err != nil {
			return err
		}
	}

	var existing int64
	if err := db.Table(Tables[devis.KindCompression]).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	now := time.Now().UTC()
	day := func(n int) *time.Time {
		t := now.AddDate(0, 0, -n)
		return &t
	}
	pdf := "demande.pdf"
	demo := []struct {
		kind devis.Kind
		d    DemandeDevis
	}{
		{devis.KindCompression, DemandeDevis{Numero: "DDV-0001", ClientPrenom: "Karim", ClientNom: "Haddad", ClientEmail: "karim@example.com", DemandePdfFile: &pdf, CreatedAt: day(1)}},
		{devis.KindTraction, DemandeDevis{Numero: "DDV-0002", DevisNumero: "DV-2024-001", UserID: &client.ID, CreatedAt: day(3)}},
		{devis.KindTorsion, DemandeDevis{Numero: "DDV-0003", Prenom: "Nadia", Nom: "Amrani", Email: "nadia@example.com", CreatedAt: day(5)}},
		{devis.KindFilDresse, DemandeDevis{Numero: "DDV-0004", ClientPrenom: "Yassine", CreatedAt: day(2)}},
		{devis.KindGrille, DemandeDevis{Numero: "DDV-0005", DevisRefNumero: "DV-2024-002", UserID: &client.ID, CreatedAt: day(8)}},
		{devis.KindAutre, DemandeDevis{Numero: "DDV-0006", ClientPrenom: "Omar", ClientNom: "Zerouali"}},
	}
	for i := range demo {
		if err := s.Insert(ctx, demo[i].kind, &demo[i].d); err != nil {
			return err
		}
	}
	return s.AddDocument(ctx, devis.KindCompression, demo[0].d.ID, "plan.pdf", "application/pdf")
}
