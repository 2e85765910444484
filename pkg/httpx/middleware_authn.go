package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/docchat/pkg/cryptox"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

const (
	MsgNoToken      = "No token, authorization denied"
	MsgInvalidToken = "Token is not valid"
)

// BearerToken extracts the token from an Authorization header value. It
// reports false when the header is empty, lacks the "Bearer " prefix or
// carries an empty token.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	if raw == "" {
		return "", false
	}
	return raw, true
}

// AuthnMiddleware rejects requests without a valid bearer token with 401 and
// never calls next for them. Expired and forged tokens are handled alike.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeBearerError(w, MsgNoToken)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed",
					"err", err,
					"token_fp", cryptox.FingerprintToken(raw),
				)
				writeBearerError(w, MsgInvalidToken)
				return
			}

			// Inject into context for downstream handlers.
			ctx = WithPrincipal(ctx, principalFromClaims(claims))
			ctx = slogx.WithAttrs(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFromClaims(c jwtx.Claims) Principal {
	p := Principal{Subject: c.Subject}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

// RFC 6750 challenge plus the JSON message clients display.
func writeBearerError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+msg+`"`)
	WriteMessage(w, http.StatusUnauthorized, msg)
}
