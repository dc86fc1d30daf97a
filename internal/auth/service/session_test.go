package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/revocation"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var superuser = domain.Credentials{Login: adminLogin, Password: adminPassword}

func TestLoginThenRefresh(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	pair, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)
	require.Equal(t, service.TokenTypeBearer, pair.TokenType)
	require.EqualValues(t, 3600, pair.ExpiresIn)

	var access jwtx.AccessPayload
	require.NoError(t, e.codec.DecodePayload(pair.AccessToken, &access))
	require.Equal(t, adminLogin, access.Subject)
	require.Equal(t, "fp1", access.Fingerprint)
	require.Equal(t, []string{adminRole}, access.Roles)

	next, err := e.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	require.NotEqual(t, pair.AccessToken, next.AccessToken)

	_, err = e.store.RefreshTokens().GetRefreshTokenByToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, store.ErrNotFound, "old refresh token is gone")

	t.Run("rotated token is rejected", func(t *testing.T) {
		_, err := e.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrTokenNotFound)
	})

	t.Run("new token keeps the fingerprint", func(t *testing.T) {
		var p jwtx.RefreshPayload
		require.NoError(t, e.codec.DecodePayload(next.RefreshToken, &p))
		require.Equal(t, "fp1", p.Fingerprint)
		require.Equal(t, 1, e.countSessions(t, adminLogin))
	})
}

func TestLoginReplacesSessionOfSameDevice(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)
	second, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, 1, e.countSessions(t, adminLogin))

	_, err = e.sessions.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenNotFound)
	_, err = e.sessions.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	_, err = e.sessions.Login(ctx, superuser, "fp2")
	require.NoError(t, err)
	require.Equal(t, 2, e.countSessions(t, adminLogin))
}

func TestLoginRecreatesMissingRefreshToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	pair, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)
	rec, err := e.store.RefreshTokens().GetRefreshTokenByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, e.store.RefreshTokens().DeleteRefreshToken(ctx, rec.ID))

	_, err = e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)
	require.Equal(t, 1, e.countSessions(t, adminLogin))
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name  string
		creds domain.Credentials
		fp    string
		want  error
	}{
		{"malformed login", domain.Credentials{Login: "super user", Password: adminPassword}, "fp1", service.ErrInvalidUserOrPassword},
		{"too short login", domain.Credentials{Login: "su", Password: adminPassword}, "fp1", service.ErrInvalidUserOrPassword},
		{"unknown login", domain.Credentials{Login: "nobody", Password: adminPassword}, "fp1", service.ErrInvalidUserOrPassword},
		{"wrong password", domain.Credentials{Login: adminLogin, Password: "wrong-password"}, "fp1", service.ErrInvalidUserOrPassword},
		{"empty password", domain.Credentials{Login: adminLogin}, "fp1", service.ErrInvalidUserOrPassword},
		{"no fingerprint", superuser, "", service.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sessions.Login(ctx, tt.creds, tt.fp)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("deleted user", func(t *testing.T) {
		_, err := e.users.Register(ctx, service.RegisterUser{Login: "gone", Email: "gone@example.com", Password: "password1"})
		require.NoError(t, err)
		require.NoError(t, e.users.Delete(ctx, "gone"))

		_, err = e.sessions.Login(ctx, domain.Credentials{Login: "gone", Password: "password1"}, "fp1")
		require.ErrorIs(t, err, service.ErrInvalidUserOrPassword)
	})
}

func TestConcurrentLoginsKeepOneSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.sessions.Login(ctx, superuser, "fp1")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, service.ErrAlreadyExists)
		}
	}
	require.Equal(t, 1, e.countSessions(t, adminLogin))
}

func TestRefreshFailures(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	pair, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := e.sessions.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		tok := pair.RefreshToken[:len(pair.RefreshToken)-1] + "0"
		if tok == pair.RefreshToken {
			tok = pair.RefreshToken[:len(pair.RefreshToken)-1] + "1"
		}
		_, err := e.sessions.Refresh(ctx, tok)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("validly signed but never stored", func(t *testing.T) {
		tok, err := e.codec.Encode(jwtx.DefaultHeader, jwtx.NewRefreshPayload(adminLogin, "fp1", time.Now().Add(time.Hour)))
		require.NoError(t, err)
		_, err = e.sessions.Refresh(ctx, tok)
		require.ErrorIs(t, err, service.ErrTokenNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		e.sessions.Now = func() time.Time { return time.Now().Add(-241 * time.Hour) }
		defer func() { e.sessions.Now = nil }()

		old, err := e.sessions.Login(ctx, superuser, "fp-old")
		require.NoError(t, err)

		_, err = e.sessions.Refresh(ctx, old.RefreshToken)
		require.ErrorIs(t, err, service.ErrExpiredToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := e.sessions.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenNotFound)
	})
}

func TestRefreshPicksUpRoleChanges(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.roles.Create(ctx, "editor", "")
	require.NoError(t, err)

	pair, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)

	require.NoError(t, e.access.Assign(ctx, adminLogin, "editor"))

	next, err := e.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	var p jwtx.AccessPayload
	require.NoError(t, e.codec.DecodePayload(next.AccessToken, &p))
	require.Equal(t, []string{adminRole, "editor"}, p.Roles)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("single device", func(t *testing.T) {
		e := newEnv(t)
		one, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)
		two, err := e.sessions.Login(ctx, superuser, "fp2")
		require.NoError(t, err)

		require.NoError(t, e.sessions.Logout(ctx, one.AccessToken, false))
		require.Equal(t, 1, e.countSessions(t, adminLogin))

		_, err = e.sessions.Refresh(ctx, one.RefreshToken)
		require.ErrorIs(t, err, service.ErrTokenNotFound)
		_, err = e.sessions.Refresh(ctx, two.RefreshToken)
		require.NoError(t, err)

		_, err = e.sessions.Authorize(ctx, one.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenRevoked)
		_, err = e.sessions.Authorize(ctx, two.AccessToken)
		require.NoError(t, err)

		t.Run("twice", func(t *testing.T) {
			require.ErrorIs(t, e.sessions.Logout(ctx, one.AccessToken, false), service.ErrTokenRevoked)
		})
	})

	t.Run("everywhere", func(t *testing.T) {
		e := newEnv(t)
		one, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)
		two, err := e.sessions.Login(ctx, superuser, "fp2")
		require.NoError(t, err)

		require.NoError(t, e.sessions.Logout(ctx, one.AccessToken, true))
		require.Zero(t, e.countSessions(t, adminLogin))

		for _, tok := range []string{one.RefreshToken, two.RefreshToken} {
			_, err = e.sessions.Refresh(ctx, tok)
			require.ErrorIs(t, err, service.ErrTokenNotFound)
		}
		_, err = e.sessions.Authorize(ctx, one.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenRevoked)
	})

	t.Run("unknown device", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)

		tok, err := e.codec.Encode(jwtx.DefaultHeader, jwtx.NewAccessPayload(adminLogin, "fp9", nil, time.Now().Add(time.Hour)))
		require.NoError(t, err)
		require.ErrorIs(t, e.sessions.Logout(ctx, tok, false), service.ErrFingerprintNotFound)

		_, err = e.sessions.Authorize(ctx, tok)
		require.ErrorIs(t, err, service.ErrTokenRevoked)
	})

	t.Run("revoked token cannot end a newer session", func(t *testing.T) {
		e := newEnv(t)
		first, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)
		require.NoError(t, e.sessions.Logout(ctx, first.AccessToken, false))

		second, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)

		for _, everywhere := range []bool{false, true} {
			require.ErrorIs(t, e.sessions.Logout(ctx, first.AccessToken, everywhere), service.ErrTokenRevoked)
		}
		require.Equal(t, 1, e.countSessions(t, adminLogin))

		_, err = e.sessions.Refresh(ctx, second.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		e := newEnv(t)
		tok, err := e.codec.Encode(jwtx.DefaultHeader, jwtx.NewAccessPayload("ghost", "fp1", nil, time.Now().Add(time.Hour)))
		require.NoError(t, err)
		require.ErrorIs(t, e.sessions.Logout(ctx, tok, false), service.ErrUserNotFound)
	})

	t.Run("forged token", func(t *testing.T) {
		e := newEnv(t)
		require.ErrorIs(t, e.sessions.Logout(ctx, "a.b.c", false), service.ErrInvalidToken)
	})

	t.Run("denylist entry lives for the remaining lifetime", func(t *testing.T) {
		e := newEnv(t)
		pair, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)

		e.sessions.Now = func() time.Time { return time.Now().Add(45 * time.Minute) }
		defer func() { e.sessions.Now = nil }()
		require.NoError(t, e.sessions.Logout(ctx, pair.AccessToken, false))

		ttl := e.redis.TTL(revocation.DefaultKeyPrefix + pair.AccessToken)
		require.InDelta(t, (15 * time.Minute).Seconds(), ttl.Seconds(), 5)

		e.redis.FastForward(ttl + time.Second)
		_, err = e.sessions.Authorize(ctx, pair.AccessToken)
		require.NoError(t, err, "entry expired and the token itself is still within its lifetime")
	})

	t.Run("cache outage is reported", func(t *testing.T) {
		e := newEnv(t)
		pair, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)

		e.redis.Close()
		err = e.sessions.Logout(ctx, pair.AccessToken, false)
		require.ErrorIs(t, err, service.ErrUnavailable)
		require.Equal(t, 1, e.countSessions(t, adminLogin), "nothing is deleted when the denylist is unreachable")

		require.NoError(t, e.redis.Restart())
		require.NoError(t, e.sessions.Logout(ctx, pair.AccessToken, false))
		_, err = e.sessions.Authorize(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenRevoked)
	})

	t.Run("retry after failed denylist write revokes the token", func(t *testing.T) {
		e := newEnv(t)
		pair, err := e.sessions.Login(ctx, superuser, "fp1")
		require.NoError(t, err)

		flaky := &failingPuts{Cache: e.sessions.Revocations, failures: 1}
		e.sessions.Revocations = flaky

		err = e.sessions.Logout(ctx, pair.AccessToken, false)
		require.ErrorIs(t, err, service.ErrUnavailable)
		require.Zero(t, e.countSessions(t, adminLogin))

		err = e.sessions.Logout(ctx, pair.AccessToken, false)
		require.ErrorIs(t, err, service.ErrTokenNotFound)
		_, err = e.sessions.Authorize(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenRevoked)
	})
}

// failingPuts fails the first failures writes and passes everything else
// through to the wrapped cache.
type failingPuts struct {
	revocation.Cache
	failures int
}

func (c *failingPuts) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.failures > 0 {
		c.failures--
		return revocation.ErrUnavailable
	}
	return c.Cache.Put(ctx, key, value, ttl)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	pair, err := e.sessions.Login(ctx, superuser, "fp1")
	require.NoError(t, err)

	t.Run("no role required", func(t *testing.T) {
		p, err := e.sessions.Authorize(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, adminLogin, p.Subject)
	})

	t.Run("any of roles", func(t *testing.T) {
		_, err := e.sessions.Authorize(ctx, pair.AccessToken, "editor", adminRole)
		require.NoError(t, err)
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := e.sessions.Authorize(ctx, pair.AccessToken, "editor")
		require.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(pair.AccessToken, ".")
		_, err := e.sessions.Authorize(ctx, parts[0]+"."+parts[1]+"."+strings.Repeat("0", 64))
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		tok, err := e.codec.Encode(jwtx.DefaultHeader, jwtx.NewAccessPayload(adminLogin, "fp1", nil, time.Now().Add(-time.Second)))
		require.NoError(t, err)
		_, err = e.sessions.Authorize(ctx, tok)
		require.ErrorIs(t, err, service.ErrExpiredToken)
	})

	t.Run("revocation is checked before the signature", func(t *testing.T) {
		require.NoError(t, e.redis.Set(revocation.DefaultKeyPrefix+"junk", revocation.RevokedMarker))
		_, err := e.sessions.Authorize(ctx, "junk")
		require.ErrorIs(t, err, service.ErrTokenRevoked)
	})

	t.Run("fails closed when the cache is down", func(t *testing.T) {
		e.redis.Close()
		_, err := e.sessions.Authorize(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrUnavailable)
		require.False(t, errors.Is(err, service.ErrInvalidToken))
	})
}
