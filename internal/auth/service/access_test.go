package service_test

import (
	"context"
	"testing"

	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestAccessService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.users.Register(ctx, service.RegisterUser{Login: "bob", Email: "bob@example.com", Password: "password1"})
	require.NoError(t, err)
	_, err = e.roles.Create(ctx, "editor", "Can edit")
	require.NoError(t, err)

	titles, err := e.access.ListRoleTitles(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, titles)
	require.Empty(t, titles)

	require.NoError(t, e.access.Assign(ctx, "bob", "editor"))
	require.ErrorIs(t, e.access.Assign(ctx, "bob", "editor"), service.ErrAlreadyExists)

	ok, err := e.access.Verify(ctx, "bob", "editor")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.access.Verify(ctx, "bob", adminRole)
	require.NoError(t, err)
	require.False(t, ok)

	titles, err = e.access.UserRoles(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, []string{"editor"}, titles)

	require.NoError(t, e.access.Remove(ctx, "bob", "editor"))
	require.ErrorIs(t, e.access.Remove(ctx, "bob", "editor"), service.ErrAccessNotFound)

	tests := []struct {
		name  string
		login string
		role  string
		want  error
	}{
		{"unknown user", "nobody", "editor", service.ErrUserNotFound},
		{"unknown role", "bob", "missing", service.ErrRoleNotFound},
		{"empty role", "bob", "", service.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, e.access.Assign(ctx, tt.login, tt.role), tt.want)
		})
	}
}

func TestRolesService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	r, err := e.roles.Create(ctx, "viewer", "Read only")
	require.NoError(t, err)
	require.Equal(t, "viewer", r.Title)
	require.NotEmpty(t, r.ID)

	_, err = e.roles.Create(ctx, "viewer", "")
	require.ErrorIs(t, err, service.ErrAlreadyExists)
	_, err = e.roles.Create(ctx, "  ", "")
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	all, err := e.roles.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	title, desc := "reader", "Reads things"
	r, err = e.roles.Update(ctx, "viewer", service.RoleUpdate{Title: &title, Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "reader", r.Title)
	require.Equal(t, "Reads things", r.Description)

	_, err = e.roles.Get(ctx, "viewer")
	require.ErrorIs(t, err, service.ErrRoleNotFound)

	taken := adminRole
	_, err = e.roles.Update(ctx, "reader", service.RoleUpdate{Title: &taken})
	require.ErrorIs(t, err, service.ErrAlreadyExists)

	require.NoError(t, e.roles.Delete(ctx, "reader"))
	require.ErrorIs(t, e.roles.Delete(ctx, "reader"), service.ErrRoleNotFound)
}
