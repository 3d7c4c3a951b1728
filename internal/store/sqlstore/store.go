// Package sqlstore reads quote requests from a relational mirror of the
// collections through GORM: PostgreSQL in production, SQLite in tests.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mrs-ressorts/portail/internal/devis"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store implements devis.Source over GORM.
type Store struct {
	db *gorm.DB
}

// Open connects with the named driver ("postgres" or "sqlite"). Postgres is
// retried a few times to let the database start.
func Open(driver, dsn string, debug bool) (*Store, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(NormalizeDSN(dsn))
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown sql driver %q", driver)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dialector, cfg)
		if err == nil || driver != "postgres" {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return New(db), nil
}

// New wraps an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the connection for migrations and seeding.
func (s *Store) DB() *gorm.DB { return s.db }

// AutoMigrate creates or updates every table.
func (s *Store) AutoMigrate() error {
	for _, m := range Models() {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Insert stores a quote request of the given kind and sets d.ID.
func (s *Store) Insert(ctx context.Context, kind devis.Kind, d *DemandeDevis) error {
	table, ok := Tables[kind]
	if !ok {
		return fmt.Errorf("no table for kind %q", kind)
	}
	return s.db.WithContext(ctx).Table(table).Create(d).Error
}

// AddDocument records attachment metadata for a quote request.
func (s *Store) AddDocument(ctx context.Context, kind devis.Kind, demandeID uint, filename, mimetype string) error {
	doc := Document{Kind: string(kind), DemandeID: demandeID, Filename: filename, Mimetype: mimetype}
	return s.db.WithContext(ctx).Create(&doc).Error
}

type row struct {
	ID             uint
	Numero         string
	DevisNumero    string
	DevisRefNumero string
	ClientPrenom   string
	ClientNom      string
	ClientEmail    string
	ClientNumTel   string
	Prenom         string
	Nom            string
	Email          string
	NumTel         string
	UserID         *uint
	UserPrenom     *string
	UserNom        *string
	UserEmail      *string
	UserNumTel     *string
	HasDemandePdf  bool
	Attachments    int
	CreatedAt      *time.Time
}

var searchColumns = []string{
	"d.numero",
	"d.devis_numero",
	"d.devis_ref_numero",
	"d.client_prenom",
	"d.client_nom",
	"d.prenom",
	"d.nom",
	"u.prenom",
	"u.nom",
	"u.email",
}

// Candidates reads one table joined with its user. An ASCII search is
// pushed down as an escaped LIKE; other searches are left to the directory
// because LOWER() does not fold non-ASCII letters on every engine. Letters
// that also fold with a non-ASCII rune ("k" and the Kelvin sign) become a
// single-character wildcard.
func (s *Store) Candidates(ctx context.Context, kind devis.Kind, search string) ([]devis.Candidate, error) {
	table, ok := Tables[kind]
	if !ok {
		return nil, fmt.Errorf("no table for kind %q", kind)
	}
	q := s.db.WithContext(ctx).
		Table(table+" AS d").
		Select(`d.id, d.numero, d.devis_numero, d.devis_ref_numero,
			d.client_prenom, d.client_nom, d.client_email, d.client_num_tel,
			d.prenom, d.nom, d.email, d.num_tel,
			u.id AS user_id, u.prenom AS user_prenom, u.nom AS user_nom, u.email AS user_email, u.num_tel AS user_num_tel,
			CASE WHEN d.demande_pdf_file IS NOT NULL THEN 1 ELSE 0 END AS has_demande_pdf,
			(SELECT COUNT(*) FROM documents dd WHERE dd.kind = ? AND dd.demande_id = d.id) AS attachments,
			d.created_at`, string(kind)).
		Joins("LEFT JOIN users u ON u.id = d.user_id")

	if search != "" && isASCII(search) {
		like := "%" + likePattern(search) + "%"
		clauses := make([]string, len(searchColumns))
		args := make([]any, len(searchColumns))
		for i, col := range searchColumns {
			clauses[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
			args[i] = like
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	var rows []row
	if err := q.Order("d.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	out := make([]devis.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.candidate())
	}
	return out, nil
}

func (r row) candidate() devis.Candidate {
	c := devis.Candidate{
		ID:                fmt.Sprint(r.ID),
		Numero:            r.Numero,
		DevisNumero:       r.DevisNumero,
		NestedDevisNumero: r.DevisRefNumero,
		Client: devis.Person{
			Prenom: r.ClientPrenom,
			Nom:    r.ClientNom,
			Email:  r.ClientEmail,
			NumTel: r.ClientNumTel,
		},
		Legacy: devis.Person{
			Prenom: r.Prenom,
			Nom:    r.Nom,
			Email:  r.Email,
			NumTel: r.NumTel,
		},
		HasDemandePdf: r.HasDemandePdf,
		Attachments:   r.Attachments,
		CreatedAt:     r.CreatedAt,
	}
	if r.UserID != nil {
		c.User = &devis.Person{
			Prenom: deref(r.UserPrenom),
			Nom:    deref(r.UserNom),
			Email:  deref(r.UserEmail),
			NumTel: deref(r.UserNumTel),
		}
	}
	return c
}

// UserRole returns the stored role of a user, "" when unknown.
func (s *Store) UserRole(ctx context.Context, userID string) (string, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return "", nil
	}
	var u User
	err = s.db.WithContext(ctx).Select("role").Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	return u.Role, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool.
func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// likePattern lower-cases an ASCII search for LIKE, escaping its
// metacharacters.
func likePattern(search string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(search) {
		if foldsOutsideASCII(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteString(escapeLike(string(r)))
	}
	return b.String()
}

func foldsOutsideASCII(r rune) bool {
	for _, o := range devis.FoldOrbit(r) {
		if o > unicode.MaxASCII {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
