package sqlstore

import (
	"time"

	"github.com/mrs-ressorts/portail/internal/devis"
)

// User mirrors the backend accounts a quote request may reference.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Prenom    string    `gorm:"size:100" json:"prenom"`
	Nom       string    `gorm:"size:100" json:"nom"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	NumTel    string    `gorm:"size:50" json:"numTel"`
	Role      string    `gorm:"size:30;default:'client'" json:"role"`
}

// DemandeDevis holds the columns shared by the six quote-request tables.
type DemandeDevis struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Numero string `gorm:"size:50;index" json:"numero,omitempty"`

	// Formal quote number, top-level or carried by the generated quote.
	DevisNumero    string `gorm:"size:50" json:"devisNumero,omitempty"`
	DevisRefNumero string `gorm:"size:50" json:"devisRefNumero,omitempty"`

	// Embedded client block.
	ClientPrenom string `gorm:"size:100" json:"clientPrenom,omitempty"`
	ClientNom    string `gorm:"size:100" json:"clientNom,omitempty"`
	ClientEmail  string `gorm:"size:255" json:"clientEmail,omitempty"`
	ClientNumTel string `gorm:"size:50" json:"clientNumTel,omitempty"`

	// Legacy flat fields.
	Prenom string `gorm:"size:100" json:"prenom,omitempty"`
	Nom    string `gorm:"size:100" json:"nom,omitempty"`
	Email  string `gorm:"size:255" json:"email,omitempty"`
	NumTel string `gorm:"size:50" json:"numTel,omitempty"`

	UserID *uint `gorm:"index" json:"user,omitempty"`

	// DemandePdfFile is set once the request-confirmation PDF exists.
	DemandePdfFile *string `gorm:"size:255" json:"demandePdf,omitempty"`

	CreatedAt *time.Time `gorm:"autoCreateTime:false;index" json:"createdAt,omitempty"`
}

type DemandeCompression struct{ DemandeDevis }
type DemandeTraction struct{ DemandeDevis }
type DemandeTorsion struct{ DemandeDevis }
type DemandeFilDresse struct{ DemandeDevis }
type DemandeGrille struct{ DemandeDevis }
type DemandeAutre struct{ DemandeDevis }

func (DemandeCompression) TableName() string { return Tables[devis.KindCompression] }
func (DemandeTraction) TableName() string    { return Tables[devis.KindTraction] }
func (DemandeTorsion) TableName() string     { return Tables[devis.KindTorsion] }
func (DemandeFilDresse) TableName() string   { return Tables[devis.KindFilDresse] }
func (DemandeGrille) TableName() string      { return Tables[devis.KindGrille] }
func (DemandeAutre) TableName() string       { return Tables[devis.KindAutre] }

// Document is the metadata of one attachment. Only rows are counted by the
// directory; the file itself lives with the backend.
type Document struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Kind      string `gorm:"size:20;not null;index:idx_document_owner" json:"kind"`
	DemandeID uint   `gorm:"not null;index:idx_document_owner" json:"demandeId"`
	Filename  string `gorm:"size:255" json:"filename"`
	Mimetype  string `gorm:"size:100" json:"mimetype"`
}

// Tables maps each kind to its table.
var Tables = map[devis.Kind]string{
	devis.KindCompression: "demande_devis_compressions",
	devis.KindTraction:    "demande_devis_tractions",
	devis.KindTorsion:     "demande_devis_torsions",
	devis.KindFilDresse:   "demande_devis_fil_dresses",
	devis.KindGrille:      "demande_devis_grilles",
	devis.KindAutre:       "demande_devis_autres",
}

// Models lists every model handled by AutoMigrate.
func Models() []any {
	return []any{
		&User{},
		&DemandeCompression{},
		&DemandeTraction{},
		&DemandeTorsion{},
		&DemandeFilDresse{},
		&DemandeGrille{},
		&DemandeAutre{},
		&Document{},
	}
}
