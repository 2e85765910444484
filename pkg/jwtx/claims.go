package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed lifetime of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims are the session token claims. The subject (user id) is the only
// application claim; iat and exp bound its validity.
type Claims struct {
	jwt.RegisteredClaims
}

// NewSessionClaims builds claims for subject issued at now.
func NewSessionClaims(subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
