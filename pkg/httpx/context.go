package httpx

import (
	"context"
	"time"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// Principal is the authenticated caller attached by AuthnMiddleware.
type Principal struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	if !ok || p.Subject == "" {
		return Principal{}, false
	}
	return p, true
}

// SubjectFromContext is shorthand for the caller's user id, or "" when the
// request is anonymous.
func SubjectFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Subject
}
