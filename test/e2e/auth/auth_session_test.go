//go:build e2e

package auth_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// TestLoginRefreshLogout walks one device through its whole session:
// login, refresh with rotation, use of the new access token, logout and
// rejection of the logged-out tokens.
func TestLoginRefreshLogout(t *testing.T) {
	login, password := registerUser(t, "flow")
	client := newClient("flow-device")

	session, err := client.Login(t.Context(), login, password)
	require.NoError(t, err)
	assertTokenPair(t, session)

	oldAccess, oldRefresh := session.AccessToken(), session.RefreshToken()

	require.NoError(t, session.Refresh(t.Context()))
	require.NotEqual(t, oldAccess, session.AccessToken(), "access token should be rotated")
	require.NotEqual(t, oldRefresh, session.RefreshToken(), "refresh token should be rotated")

	// The rotated-out refresh token is dead.
	_, err = client.Refresh(t.Context(), oldRefresh)
	requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant)

	profile, err := session.Profile(t.Context())
	require.NoError(t, err)
	require.Equal(t, login, profile.Login)

	access, refresh := session.AccessToken(), session.RefreshToken()
	require.NoError(t, session.Logout(t.Context()))

	// Denylisted access token.
	replay := client.NewSessionFromTokens(access, "", 3600)
	_, err = replay.Profile(t.Context())
	requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidToken)

	// The device's refresh token was deleted.
	_, err = client.Refresh(t.Context(), refresh)
	requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	login, _ := registerUser(t, "badcreds")
	client := newClient("badcreds-device")

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"wrong password", login, "not-the-password"},
		{"unknown user", "nobody" + login, "whatever"},
		{"malformed login", "no spaces allowed", "whatever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Login(t.Context(), tt.login, tt.password)
			requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant)
		})
	}
}

func TestLogoutEverywhere(t *testing.T) {
	login, password := registerUser(t, "everywhere")

	laptop, err := newClient("laptop").Login(t.Context(), login, password)
	require.NoError(t, err)
	phone, err := newClient("phone").Login(t.Context(), login, password)
	require.NoError(t, err)

	phoneRefresh := phone.RefreshToken()
	require.NoError(t, laptop.LogoutEverywhere(t.Context()))

	_, err = newClient("phone").Refresh(t.Context(), phoneRefresh)
	requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant)

	// The phone's access token is still valid until it expires; only the
	// token used to log out is denylisted.
	_, err = phone.Profile(t.Context())
	require.NoError(t, err)
}

func TestReloginReplacesDeviceSession(t *testing.T) {
	login, password := registerUser(t, "relogin")
	client := newClient("relogin-device")

	first, err := client.Login(t.Context(), login, password)
	require.NoError(t, err)
	second, err := client.Login(t.Context(), login, password)
	require.NoError(t, err)

	_, err = client.Refresh(t.Context(), first.RefreshToken())
	requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant)

	_, err = client.Refresh(t.Context(), second.RefreshToken())
	require.NoError(t, err)
}

// TestConcurrentLoginsAndRefreshes races logins on one device and refreshes
// of one token against Postgres, where transactions really overlap.
func TestConcurrentLoginsAndRefreshes(t *testing.T) {
	const n = 8
	login, password := registerUser(t, "race")
	client := newClient("race-device")

	sessions := make([]*authsdk.Session, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessions[i], errs[i] = client.Login(t.Context(), login, password)
		}()
	}
	wg.Wait()

	var winners []*authsdk.Session
	for i, err := range errs {
		if err != nil {
			requireCode(t, err, http.StatusConflict, httpx.ErrorCodeConflict)
			continue
		}
		winners = append(winners, sessions[i])
	}
	require.NotEmpty(t, winners)
	require.Equal(t, 1, countSessions(t, login))

	// Each winning login replaced the one before it, so exactly one of
	// the handed-out refresh tokens is still live.
	live := ""
	for _, s := range winners {
		if _, err := client.Refresh(t.Context(), s.RefreshToken()); err == nil {
			require.Empty(t, live, "more than one refresh token survived")
			live = s.RefreshToken()
		}
	}
	require.NotEmpty(t, live)

	// Log in again for a fresh token and race refreshes of it.
	session, err := client.Login(t.Context(), login, password)
	require.NoError(t, err)
	token := session.RefreshToken()

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Refresh(t.Context(), token)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant)
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, countSessions(t, login))
}

func TestHealth(t *testing.T) {
	client := newClient("")

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cache)
}
