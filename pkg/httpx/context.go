package httpx

import (
	"context"

	"github.com/bormonoff/Auth-Service/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject     ctxKey = "subject"
	CtxKeyRoles       ctxKey = "roles"
	CtxKeyPayload     ctxKey = "payload"
	CtxKeyAccessToken ctxKey = "access_token"
)

func contextWithAuth(ctx context.Context, token string, p jwtx.AccessPayload) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, p.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, p.Roles)
	ctx = context.WithValue(ctx, CtxKeyPayload, p)
	ctx = context.WithValue(ctx, CtxKeyAccessToken, token)
	return ctx
}

// SubjectFromContext returns the authenticated login, or "".
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(CtxKeySubject).(string)
	return s
}

// PayloadFromContext returns the verified access payload.
func PayloadFromContext(ctx context.Context) (jwtx.AccessPayload, bool) {
	p, ok := ctx.Value(CtxKeyPayload).(jwtx.AccessPayload)
	return p, ok
}

// AccessTokenFromContext returns the raw bearer token that was verified.
func AccessTokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(CtxKeyAccessToken).(string)
	return s
}
