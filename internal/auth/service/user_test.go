package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bormonoff/Auth-Service/internal/auth/domain"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u, err := e.users.Register(ctx, service.RegisterUser{
		Login:     "alice",
		Email:     "alice@example.com",
		Password:  "password1",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	require.True(t, u.IsActive)
	require.Equal(t, "Alice", u.FirstName)
	require.NoError(t, e.hasher.Verify(u.PasswordHash, "password1"))

	tests := []struct {
		name string
		in   service.RegisterUser
		want error
	}{
		{"bad login", service.RegisterUser{Login: "al ice", Email: "x@example.com", Password: "password1"}, service.ErrInvalidRequest},
		{"bad email", service.RegisterUser{Login: "alice2", Email: "not-an-email", Password: "password1"}, service.ErrInvalidRequest},
		{"short password", service.RegisterUser{Login: "alice2", Email: "x@example.com", Password: "short"}, service.ErrInvalidRequest},
		{"taken login", service.RegisterUser{Login: "alice", Email: "x@example.com", Password: "password1"}, service.ErrAlreadyExists},
		{"taken email", service.RegisterUser{Login: "alice2", Email: "alice@example.com", Password: "password1"}, service.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.Register(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.users.Register(ctx, service.RegisterUser{Login: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	email, last, pw := "a@example.org", "Liddell", "new-password"
	u, err := e.users.Update(ctx, "alice", domain.UserPatch{Email: &email, LastName: &last, Password: &pw})
	require.NoError(t, err)
	require.Equal(t, email, u.Email)
	require.Equal(t, last, u.LastName)

	_, err = e.sessions.Login(ctx, domain.Credentials{Login: "alice", Password: pw}, "fp1")
	require.NoError(t, err)

	bad := "nope"
	_, err = e.users.Update(ctx, "alice", domain.UserPatch{Email: &bad})
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = e.users.Update(ctx, "nobody", domain.UserPatch{})
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u, err := e.users.Register(ctx, service.RegisterUser{Login: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	pair, err := e.sessions.Login(ctx, domain.Credentials{Login: "alice", Password: "password1"}, "fp1")
	require.NoError(t, err)

	require.NoError(t, e.users.Delete(ctx, "alice"))

	_, err = e.users.GetByLogin(ctx, "alice")
	require.ErrorIs(t, err, service.ErrUserNotFound)

	row, err := e.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, row.IsActive)
	require.True(t, strings.HasPrefix(row.Login, "deleted-"))
	require.True(t, strings.HasSuffix(row.Email, "@deleted.invalid"))

	n, err := e.store.RefreshTokens().CountUserRefreshTokens(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = e.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenNotFound)

	t.Run("login and email can be reused", func(t *testing.T) {
		_, err := e.users.Register(ctx, service.RegisterUser{Login: "alice", Email: "alice@example.com", Password: "password1"})
		require.NoError(t, err)
	})

	t.Run("deleted login is not addressable", func(t *testing.T) {
		_, err := e.users.GetByLogin(ctx, row.Login)
		require.ErrorIs(t, err, service.ErrUserDeleted)
	})
}
