// Package storetest holds the behaviour every store driver must share. Driver
// packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises s. The store must be migrated and empty.
func Run(t *testing.T, s store.Store) {
	t.Run("CreateAndFindUser", func(t *testing.T) { testCreateAndFindUser(t, s) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, s) })
	t.Run("ConcurrentDuplicateEmail", func(t *testing.T) { testConcurrentDuplicateEmail(t, s) })
	t.Run("ProfileOmitsHash", func(t *testing.T) { testProfileOmitsHash(t, s) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, s) })
	t.Run("WithTxRollback", func(t *testing.T) { testWithTxRollback(t, s) })
	t.Run("Documents", func(t *testing.T) { testDocuments(t, s) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, s.Ping(context.Background())) })
}

// NewUser returns a user with a fresh id and the given email.
func NewUser(email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func testCreateAndFindUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := NewUser("find@example.com")
	u.ProfileImage = "avatars/find.png"
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byEmail, err := s.Users().GetUserByEmail(ctx, "find@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, u.PasswordHash, byEmail.PasswordHash)
	require.Equal(t, u.ProfileImage, byEmail.ProfileImage)
	require.WithinDuration(t, u.CreatedAt, byEmail.CreatedAt, time.Millisecond)

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, u.Name, byID.Name)
}

func testDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := NewUser("dup@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, first))

	second := NewUser("dup@example.com")
	err := s.Users().CreateUser(ctx, second)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Users().GetUserByID(ctx, second.ID)
	require.ErrorIs(t, err, store.ErrNotFound, "failed create must not write")

	got, err := s.Users().GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
}

func testConcurrentDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	const n = 8

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Users().CreateUser(ctx, NewUser("race@example.com"))
		}()
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrAlreadyExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, created, "exactly one concurrent registration may win")
}

func testProfileOmitsHash(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := NewUser("profile@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	p, err := s.Users().GetProfileByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, p.ID)
	require.Equal(t, u.Name, p.Name)
	require.Equal(t, u.Email, p.Email)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	missing := idx.New().String()

	_, err := s.Users().GetUserByID(ctx, missing)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetProfileByID(ctx, missing)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testWithTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := NewUser("tx@example.com")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	committed := NewUser("tx-ok@example.com")
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, committed)
	}))

	_, err = s.Users().GetUserByID(ctx, committed.ID)
	require.NoError(t, err)
}

func testDocuments(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := NewUser("docs@example.com")
	other := NewUser("other-docs@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, owner))
	require.NoError(t, s.Users().CreateUser(ctx, other))

	empty, err := s.Documents().ListDocumentsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	base := time.Now().UTC().Truncate(time.Millisecond)
	older := domain.Document{
		ID: idx.New().String(), OwnerID: owner.ID, Name: "a.pdf", Type: "application/pdf",
		Size: 2048, StoragePath: "u/a.pdf", FileURL: "/uploads/u/a.pdf", CreatedAt: base.Add(-time.Minute),
	}
	newer := domain.Document{
		ID: idx.New().String(), OwnerID: owner.ID, Name: "b.txt", Type: "text/plain",
		Size: 10, StoragePath: "u/b.txt", FileURL: "/uploads/u/b.txt", CreatedAt: base,
	}
	foreign := domain.Document{
		ID: idx.New().String(), OwnerID: other.ID, Name: "c.txt", Type: "text/plain",
		Size: 1, StoragePath: "o/c.txt", FileURL: "/uploads/o/c.txt", CreatedAt: base,
	}
	for _, d := range []domain.Document{older, newer, foreign} {
		require.NoError(t, s.Documents().CreateDocument(ctx, d))
	}

	docs, err := s.Documents().ListDocumentsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, newer.ID, docs[0].ID, "newest first")
	require.Equal(t, older.ID, docs[1].ID)
	require.Equal(t, int64(2048), docs[1].Size)
	require.Equal(t, "/uploads/u/a.pdf", docs[1].FileURL)
}
