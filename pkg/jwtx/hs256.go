package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret NewHS256 accepts (256 bits).
const MinSecretLength = 32

// HS256 signs and verifies session tokens with a shared server secret. It
// holds no mutable state: the same secret, subject and clock reading always
// produce the same token.
type HS256 struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an HS256.
type Option func(*HS256)

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(h *HS256) { h.ttl = ttl }
}

// WithClock replaces time.Now, mainly so tests can mint tokens in the past.
func WithClock(now func() time.Time) Option {
	return func(h *HS256) { h.now = now }
}

// NewHS256 creates an HS256 issuer/verifier from secret.
func NewHS256(secret []byte, opts ...Option) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwtx: secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}

	h := &HS256{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Issue signs a token whose subject is the user id.
func (h *HS256) Issue(subject string) (string, error) {
	if subject == "" {
		return "", ErrInvalidClaim
	}
	claims := NewSessionClaims(subject, h.ttl, h.now().UTC())
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify parses and validates token. Only HS256 is accepted; "none" and
// asymmetric algorithms fail with ErrMalformed or ErrInvalidSig.
func (h *HS256) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(h.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
