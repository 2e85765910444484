package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/pkg/cryptox"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
	"github.com/aussiebroadwan/docchat/pkg/idx"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 256
	MaxNameLength     = 100
)

// PasswordHasher is satisfied by *cryptox.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) error
	Equalize(password string)
}

// TokenSigner issues and verifies session tokens.
type TokenSigner interface {
	jwtx.Issuer
	jwtx.Verifier
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

type AuthService struct {
	Store  store.Store
	Hasher PasswordHasher
	Tokens TokenSigner
	Now    func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates a user and returns a session token for it. The password is
// hashed once, before anything is written; a failure at any step leaves no
// record behind and issues no token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if err := validateRegistration(name, email, password); err != nil {
		return AuthResult{}, err
	}

	switch _, err := s.Store.Users().GetUserByEmail(ctx, email); {
	case err == nil:
		return AuthResult{}, ErrDuplicateCredential
	case !errors.Is(err, store.ErrNotFound):
		l.Error("register: lookup failed", "error", err)
		return AuthResult{}, fmt.Errorf("%w: lookup user: %v", ErrUpstreamFailure, err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("register: hash failed", "error", err)
		return AuthResult{}, fmt.Errorf("%w: hash password: %v", ErrUpstreamFailure, err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().Truncate(time.Second),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, user)
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		// lost a race with a concurrent registration
		return AuthResult{}, ErrDuplicateCredential
	case err != nil:
		l.Error("register: create user failed", "error", err)
		return AuthResult{}, fmt.Errorf("%w: create user: %v", ErrUpstreamFailure, err)
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("register: issue token failed", "user_id", user.ID, "error", err)
		return AuthResult{}, fmt.Errorf("%w: issue token: %v", ErrUpstreamFailure, err)
	}

	l.Info("user registered", "user_id", user.ID)
	return AuthResult{Token: token, User: user.Profile()}, nil
}

// Login checks credentials and issues a fresh token. Unknown emails and wrong
// passwords are indistinguishable to the caller, in message and in timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.Hasher.Equalize(password)
		l.Info("login failed", "reason", "unknown_email")
		return AuthResult{}, ErrInvalidCredentials
	case err != nil:
		l.Error("login: lookup failed", "error", err)
		return AuthResult{}, fmt.Errorf("%w: lookup user: %v", ErrUpstreamFailure, err)
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			// unreadable stored hash; still answer like a mismatch
			l.Error("login: stored hash unusable", "user_id", user.ID, "error", err)
		}
		l.Info("login failed", "reason", "wrong_password", "user_id", user.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login: issue token failed", "user_id", user.ID, "error", err)
		return AuthResult{}, fmt.Errorf("%w: issue token: %v", ErrUpstreamFailure, err)
	}

	l.Info("user logged in", "user_id", user.ID)
	return AuthResult{Token: token, User: user.Profile()}, nil
}

// CurrentUser resolves the raw Authorization header value to the caller's
// profile.
func (s *AuthService) CurrentUser(ctx context.Context, authorization string) (domain.Profile, error) {
	token, ok := httpx.BearerToken(authorization)
	if !ok {
		return domain.Profile{}, ErrUnauthorized
	}

	claims, err := s.Tokens.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Info("current user: token rejected",
			"token_fp", cryptox.FingerprintToken(token), "error", err)
		return domain.Profile{}, ErrInvalidToken
	}

	profile, err := s.Store.Users().GetProfileByID(ctx, claims.Subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Profile{}, ErrNotFound
	case err != nil:
		slogx.FromContext(ctx).Error("current user: lookup failed", "user_id", claims.Subject, "error", err)
		return domain.Profile{}, fmt.Errorf("%w: lookup profile: %v", ErrUpstreamFailure, err)
	}
	return profile, nil
}

func validateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return invalid("Name is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		return invalid(fmt.Sprintf("Name must be at most %d characters", MaxNameLength))
	case !validEmail(email):
		return invalid("Please include a valid email")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return invalid(fmt.Sprintf("Please enter a password with %d or more characters", MinPasswordLength))
	case len(password) > MaxPasswordLength:
		return invalid(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at:], ".")
}

