package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bormonoff/Auth-Service/pkg/httpx"
	"github.com/bormonoff/Auth-Service/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

type stubAuthorizer struct {
	token   string
	payload jwtx.AccessPayload
	roles   []string
	err     error
}

func (s *stubAuthorizer) Authorize(_ context.Context, token string, roles ...string) (jwtx.AccessPayload, error) {
	s.token = token
	s.roles = roles
	return s.payload, s.err
}

func TestAuthnMiddleware(t *testing.T) {
	errDenied := errors.New("denied")

	newHandler := func(a httpx.Authorizer, roles ...string) (http.Handler, *string) {
		var sub string
		onErr := func(w http.ResponseWriter, _ *http.Request, err error) {
			code := http.StatusUnauthorized
			if errors.Is(err, errDenied) {
				code = http.StatusForbidden
			}
			w.WriteHeader(code)
		}
		h := httpx.AuthnMiddleware(a, onErr, roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub = httpx.SubjectFromContext(r.Context())
			require.Equal(t, "tok", httpx.AccessTokenFromContext(r.Context()))
			p, ok := httpx.PayloadFromContext(r.Context())
			require.True(t, ok)
			require.Equal(t, sub, p.Subject)
			w.WriteHeader(http.StatusOK)
		}))
		return h, &sub
	}

	t.Run("missing header", func(t *testing.T) {
		h, _ := newHandler(&stubAuthorizer{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		h, _ := newHandler(&stubAuthorizer{})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authorized", func(t *testing.T) {
		a := &stubAuthorizer{payload: jwtx.AccessPayload{Subject: "alice", Roles: []string{"admin"}}}
		h, sub := newHandler(a, "admin")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer tok")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", *sub)
		require.Equal(t, "tok", a.token)
		require.Equal(t, []string{"admin"}, a.roles)
	})

	t.Run("rejected by authorizer", func(t *testing.T) {
		h, _ := newHandler(&stubAuthorizer{err: errDenied}, "admin")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		ct      string
		in      string
		wantErr bool
	}{
		{"ok", "application/json", `{"name":"x"}`, false},
		{"charset", "application/json; charset=utf-8", `{"name":"x"}`, false},
		{"no content type", "", `{"name":"x"}`, false},
		{"form", "application/x-www-form-urlencoded", `name=x`, true},
		{"unknown field", "application/json", `{"name":"x","admin":true}`, true},
		{"trailing data", "application/json", `{"name":"x"}{}`, true},
		{"broken", "application/json", `{"name":`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.in))
			if tc.ct != "" {
				req.Header.Set("Content-Type", tc.ct)
			}
			var b body
			err := httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "x", b.Name)
		})
	}
}
