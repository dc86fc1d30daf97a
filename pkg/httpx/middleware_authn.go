package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/bormonoff/Auth-Service/pkg/jwtx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
)

// Authorizer is the request gate: it checks revocation, signature, expiry and
// that the token carries at least one of roles.
type Authorizer interface {
	Authorize(ctx context.Context, token string, roles ...string) (jwtx.AccessPayload, error)
}

// ErrorWriter renders an authorization failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// AuthnMiddleware authenticates the bearer token with a and, when roles are
// given, requires one of them. On success the payload is stored in the
// request context.
func AuthnMiddleware(a Authorizer, onErr ErrorWriter, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				WriteBearerError(w, "missing bearer token")
				return
			}

			payload, err := a.Authorize(ctx, raw, roles...)
			if err != nil {
				slogx.FromContext(ctx).Warn("authorization failed", "err", err)
				onErr(w, r, err)
				return
			}

			ctx = slogx.WithSession(contextWithAuth(ctx, raw, payload), payload.Subject, payload.Fingerprint)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
