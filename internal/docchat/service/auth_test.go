package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	reg, err := svc.Register(ctx, "  Ann ", "Ann@X.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, "Ann", reg.User.Name)
	require.Equal(t, "ann@x.com", reg.User.Email)

	login, err := svc.Login(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)

	claims, err := svc.Tokens.Verify(login.Token)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, claims.Subject)

	stored, err := svc.Store.Users().GetUserByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)
	require.NoError(t, svc.Hasher.Verify("secret1", stored.PasswordHash))
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(t)

	tests := []struct {
		name, email, password string
		reason                string
	}{
		{"", "a@x.com", "secret1", "Name is required"},
		{"   ", "a@x.com", "secret1", "Name is required"},
		{"Ann", "not-an-email", "secret1", "Please include a valid email"},
		{"Ann", "Ann <a@x.com>", "secret1", "Please include a valid email"},
		{"Ann", "a@localhost", "secret1", "Please include a valid email"},
		{"Ann", "a@x.com", "12345", "Please enter a password with 6 or more characters"},
	}

	for _, tt := range tests {
		t.Run(tt.reason+"/"+tt.email, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.name, tt.email, tt.password)
			require.ErrorIs(t, err, ErrInvalidInput)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tt.reason, ve.Reason)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	first, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Ann", "ANN@x.com", "another1")
	require.ErrorIs(t, err, ErrDuplicateCredential)

	u, err := svc.Store.Users().GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, first.User.ID, u.ID)
	require.Equal(t, "Ann", u.Name)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	const n = 6
	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "Ann", "race@x.com", "secret1")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrDuplicateCredential):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, ok.Load())
	require.EqualValues(t, n-1, dup.Load())
}

type failingHasher struct{ PasswordHasher }

func (failingHasher) Hash(string) (string, error) { return "", errBoom }

func TestRegister_HashFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	svc.Hasher = failingHasher{svc.Hasher}

	res, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1")
	require.ErrorIs(t, err, ErrUpstreamFailure)
	require.Empty(t, res.Token)

	_, err = svc.Store.Users().GetUserByEmail(ctx, "ann@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegister_StoreFailure(t *testing.T) {
	svc := newAuthService(t)
	require.NoError(t, svc.Store.Close())

	res, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1")
	require.ErrorIs(t, err, ErrUpstreamFailure)
	require.Empty(t, res.Token)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "ann@x.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@x.com", "secret1")
	_, empty := svc.Login(ctx, "", "")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.ErrorIs(t, empty, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_LegacyBcryptHash(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	// imported records carry unpeppered bcrypt digests
	digest, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	legacy := domain.User{
		ID:           "01J0000000000000000000LEGA",
		Name:         "Old",
		Email:        "old@x.com",
		PasswordHash: string(digest),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, svc.Store.Users().CreateUser(ctx, legacy))

	res, err := svc.Login(ctx, "OLD@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, legacy.ID, res.User.ID)

	_, err = svc.Login(ctx, "old@x.com", "not-it")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	reg, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		p, err := svc.CurrentUser(ctx, "Bearer "+reg.Token)
		require.NoError(t, err)
		require.Equal(t, reg.User, p)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := svc.CurrentUser(ctx, "")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("not bearer", func(t *testing.T) {
		_, err := svc.CurrentUser(ctx, reg.Token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.CurrentUser(ctx, "Bearer not.a.jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("vanished subject", func(t *testing.T) {
		token, err := svc.Tokens.Issue("01J00000000000000000000GONE")
		require.NoError(t, err)
		_, err = svc.CurrentUser(ctx, "Bearer "+token)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCurrentUser_TokenIssuedEightDaysAgo(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	reg, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	past, err := jwtx.NewHS256(testSecret, jwtx.WithClock(func() time.Time {
		return time.Now().Add(-8 * 24 * time.Hour)
	}))
	require.NoError(t, err)
	stale, err := past.Issue(reg.User.ID)
	require.NoError(t, err)

	_, err = svc.CurrentUser(ctx, "Bearer "+stale)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.NotErrorIs(t, err, ErrUpstreamFailure)
}
