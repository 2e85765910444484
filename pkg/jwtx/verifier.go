package jwtx

import (
	"errors"
	"fmt"
)

// Issuer mints a signed token for a subject.
type Issuer interface {
	Issue(subject string) (string, error)
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// ErrInvalidToken is wrapped by every verification failure, so callers that
// do not care why a token was rejected can match on it alone.
var ErrInvalidToken = errors.New("jwtx: invalid token")

var (
	ErrMalformed    = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSig   = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrInvalidClaim = fmt.Errorf("%w: invalid claims", ErrInvalidToken)
)
