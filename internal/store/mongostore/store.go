// Package mongostore reads quote requests from MongoDB, one collection per kind.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrs-ressorts/portail/internal/devis"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultCollections follows the pluralised model names of the quote forms.
var DefaultCollections = map[devis.Kind]string{
	devis.KindCompression: "demandedeviscompressions",
	devis.KindTraction:    "demandedevistractions",
	devis.KindTorsion:     "demandedevistorsions",
	devis.KindFilDresse:   "demandedevisfildresses",
	devis.KindGrille:      "demandedevisgrilles",
	devis.KindAutre:       "demandedevisautres",
}

// DefaultUsersCollection holds the accounts quote requests may reference.
const DefaultUsersCollection = "users"

// Config selects the database and collection names.
type Config struct {
	URI             string
	Database        string
	Collections     map[devis.Kind]string
	UsersCollection string
	ConnectTimeout  time.Duration
}

// Store implements devis.Source on top of a MongoDB database.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	collections map[devis.Kind]string
	users       string
}

// Connect opens the client and checks the primary is reachable.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, cfg), nil
}

// New wraps an already connected client.
func New(client *mongo.Client, cfg Config) *Store {
	cols := make(map[devis.Kind]string, len(DefaultCollections))
	for k, v := range DefaultCollections {
		cols[k] = v
	}
	for k, v := range cfg.Collections {
		if v != "" {
			cols[k] = v
		}
	}
	users := cfg.UsersCollection
	if users == "" {
		users = DefaultUsersCollection
	}
	return &Store{
		client:      client,
		db:          client.Database(cfg.Database),
		collections: cols,
		users:       users,
	}
}

// Candidates runs the per-kind pipeline and decodes every row.
func (s *Store) Candidates(ctx context.Context, kind devis.Kind, search string) ([]devis.Candidate, error) {
	name, ok := s.collections[kind]
	if !ok {
		return nil, fmt.Errorf("no collection for kind %q", kind)
	}
	cur, err := s.db.Collection(name).Aggregate(ctx, Pipeline(s.users, search))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", name, err)
	}
	var docs []demandeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	out := make([]devis.Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.candidate())
	}
	return out, nil
}

// UserRole returns the stored role of a user, "" when the user does not exist.
func (s *Store) UserRole(ctx context.Context, userID string) (string, error) {
	var filter bson.D
	if oid, err := bson.ObjectIDFromHex(userID); err == nil {
		filter = bson.D{{Key: "_id", Value: oid}}
	} else {
		filter = bson.D{{Key: "_id", Value: userID}}
	}
	var doc struct {
		Role string `bson:"role"`
	}
	opts := options.FindOne().SetProjection(bson.D{{Key: "role", Value: 1}})
	err := s.db.Collection(s.users).FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	return doc.Role, nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
