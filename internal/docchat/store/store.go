package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres, mongo) implement it and expose sub-repositories. Repositories
// reached through a Tx cannot start another transaction.
type Store interface {
	Users() Users
	Documents() Documents

	// ApplyMigrations brings the schema (or indexes) up to date. It is safe
	// to call on every start.
	ApplyMigrations(ctx context.Context) error

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the set of repositories bound to one transaction.
type Tx interface {
	Users() Users
	Documents() Documents
}

type Users interface {
	// GetUserByID returns the full record, hash included.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by normalized email. Used by login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetProfileByID returns the redacted view. Implementations must not
	// read the password hash at all.
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)

	// CreateUser inserts a new user (id is provided by app via ULID). A
	// taken email yields ErrAlreadyExists and writes nothing.
	CreateUser(ctx context.Context, u domain.User) error
}

type Documents interface {
	// CreateDocument inserts a document record (id is provided by app via ULID).
	CreateDocument(ctx context.Context, d domain.Document) error

	// ListDocumentsByOwner returns the owner's documents, newest first.
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
}
