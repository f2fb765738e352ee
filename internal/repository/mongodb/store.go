// Package mongodb implements repository.Store on MongoDB. Collections use
// the same names as the SQL tables.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const (
	collUsers      = "users"
	collAllowed    = "allowed_emails"
	collCows       = "cows"
	collBulls      = "bulls"
	collBreeding   = "breeding_records"
	collPregnancy  = "pregnancies"
	collMedicine   = "medicine_inventory"
	collTreatments = "medicine_treatments"
	collMilking    = "milking_records"
	collReminders  = "reminders"
)

var _ repository.Store = (*Store)(nil)

// Options configures the MongoDB connection.
type Options struct {
	URI      string
	Database string
	// Transactions enables multi-document transactions. It requires a
	// replica set or sharded cluster.
	Transactions bool
}

// Store is the MongoDB implementation of repository.Store.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	logger       *zap.Logger
	transactions bool
	session      mongo.Session
}

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.URI == "" {
		return nil, errors.New("mongodb: uri must not be empty")
	}
	if opts.Database == "" {
		return nil, errors.New("mongodb: database name must not be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client:       client,
		db:           client.Database(opts.Database),
		logger:       logger,
		transactions: opts.Transactions,
	}, nil
}

// Migrate creates the indexes the store relies on.
func (s *Store) Migrate(ctx context.Context) error {
	for coll, indexes := range indexModels() {
		if len(indexes) == 0 {
			continue
		}
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongodb: create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func indexModels() map[string][]mongo.IndexModel {
	ownerKey := func(keys ...string) bson.D {
		d := bson.D{{Key: "user_id", Value: 1}}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return d
	}
	return map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_users_email")},
			{Keys: bson.D{{Key: "whatsapp_phone", Value: 1}}, Options: options.Index().SetName("idx_users_phone")},
		},
		collCows: {
			{Keys: ownerKey("tag_number"), Options: options.Index().SetUnique(true).SetName("idx_cows_owner_tag")},
		},
		collBulls:      {{Keys: ownerKey("name")}},
		collBreeding:   {{Keys: ownerKey("cow_id")}},
		collPregnancy:  {{Keys: ownerKey("cow_id", "pregnancy_status")}},
		collMedicine:   {{Keys: ownerKey("name")}},
		collTreatments: {{Keys: ownerKey("cow_id", "treatment_date")}},
		collMilking:    {{Keys: ownerKey("milking_date")}},
		collReminders:  {{Keys: ownerKey("completed", "due_date")}},
	}
}

// InTx runs fn inside a multi-document transaction when transactions are
// enabled. Otherwise fn runs directly and each write commits on its own.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if !s.transactions || s.session != nil {
		return fn(s)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return models.WrapStore("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(mongo.SessionContext) (interface{}, error) {
		bound := *s
		bound.session = session
		return nil, fn(&bound)
	})
	return err
}

// Atomic reports whether InTx rolls back on failure.
func (s *Store) Atomic() bool { return s.transactions }

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// bind attaches the transaction session, if any, to ctx.
func (s *Store) bind(ctx context.Context) context.Context {
	if s.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, s.session)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return models.ErrUnauthenticated
	}
	return nil
}

func newID() string { return uuid.NewString() }

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.ErrDuplicate
	default:
		return models.WrapStore(op, err)
	}
}

func ownerFilter(owner string) bson.D {
	return bson.D{{Key: "user_id", Value: owner}}
}

func scopedFilter(owner, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: owner}}
}

func (s *Store) insert(ctx context.Context, coll, op string, doc interface{}) error {
	_, err := s.coll(coll).InsertOne(s.bind(ctx), doc)
	return translate(op, err)
}

func getScoped[T any](ctx context.Context, s *Store, coll, op, owner, id string) (*T, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, models.ErrNotFound
	}
	var out T
	if err := s.coll(coll).FindOne(s.bind(ctx), scopedFilter(owner, id)).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func (s *Store) updateScoped(ctx context.Context, coll, op, owner, id string, update bson.D) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	res, err := s.coll(coll).UpdateOne(s.bind(ctx), scopedFilter(owner, id), update)
	if err != nil {
		return translate(op, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) deleteScoped(ctx context.Context, coll, op, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	res, err := s.coll(coll).DeleteOne(s.bind(ctx), scopedFilter(owner, id))
	if err != nil {
		return translate(op, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func findAll[T any](ctx context.Context, s *Store, coll, op string, filter bson.D, opts *options.FindOptions) ([]T, error) {
	cur, err := s.coll(coll).Find(s.bind(ctx), filter, opts)
	if err != nil {
		return nil, translate(op, err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

func sortBy(keys ...bson.E) *options.FindOptions {
	return options.Find().SetSort(bson.D(keys))
}
