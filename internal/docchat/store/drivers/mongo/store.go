package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrFailedToConnect = errors.New("failed to connect to mongo")

const (
	usersCollection     = "users"
	documentsCollection = "documents"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to cfg.ConnectionURL, retrying up to cfg.RetryAttempts
// times before giving up.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ConnectionURL == "" {
		return nil, fmt.Errorf("%w: MONGODB_URL is empty", ErrFailedToConnect)
	}
	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for i := range attempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return &Store{client: client, db: client.Database(cfg.Database)}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

// ApplyMigrations creates the indexes the repositories rely on. The unique
// email index is what makes concurrent registrations safe.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	if _, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	}); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	if _, err := s.db.Collection(documentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("documents_owner_created_idx"),
	}); err != nil {
		return fmt.Errorf("create documents owner index: %w", err)
	}
	return nil
}

// WithTx runs fn against the plain collections. Multi-document transactions
// need a replica set, and every write in this system is a single insert, so
// fn gets no rollback here.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Users() store.Users {
	return &usersRepo{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Documents() store.Documents {
	return &documentsRepo{coll: s.db.Collection(documentsCollection)}
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}
